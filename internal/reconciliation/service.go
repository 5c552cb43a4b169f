package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// Service derives surplus/deficit views from confirmed items.
type Service interface {
	ListSurplusDeficit(ctx context.Context, input ListSurplusDeficitInput) ([]SurplusDeficitRow, error)
	ListWarehouseQueue(ctx context.Context, input ListQueueInput) (*QueuePage, error)
}

// ListSurplusDeficitInput scopes the reconciliation scan. Callers supply
// start-of-day/end-of-day bounds for the inclusive date range.
type ListSurplusDeficitInput struct {
	Filters RangeFilters
	Status  enums.DeficitFilter
}

// ListQueueInput scopes the warehouse queue listing.
type ListQueueInput struct {
	Filters    RangeFilters
	Status     enums.QueueStatus
	Pagination pagination.Params
}

type service struct {
	repo *Repository
}

// NewService constructs the reconciliation service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reconciliation repository required")
	}
	return &service{repo: repo}, nil
}

// ListSurplusDeficit scans items in the date range and reports each one's
// signed deficit. Items without a parseable leader confirmation are excluded
// rather than counted as zero. With the deficit filter only imbalanced items
// are returned.
func (s *service) ListSurplusDeficit(ctx context.Context, input ListSurplusDeficitInput) ([]SurplusDeficitRow, error) {
	if err := validateRange(input.Filters); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.DeficitFilterAll
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status filter %q", status))
	}

	records, err := s.repo.ListItemsInRange(ctx, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan items")
	}

	rows := make([]SurplusDeficitRow, 0, len(records))
	for _, record := range records {
		if record.LeaderConfirmValue == nil {
			continue
		}
		confirmed, ok := TryParseQuantity(*record.LeaderConfirmValue)
		if !ok {
			continue
		}
		deficit := confirmed.Sub(record.Quantity)
		if status == enums.DeficitFilterDeficit && deficit.IsZero() {
			continue
		}
		rows = append(rows, SurplusDeficitRow{
			OrderID:      record.OrderID,
			ItemID:       record.ItemID,
			Stt:          record.Stt,
			ProductName:  record.ProductName,
			Size:         record.Size,
			Unit:         record.Unit,
			Warehouse:    record.Warehouse,
			Quantity:     record.Quantity,
			ConfirmedQty: confirmed,
			Deficit:      deficit,
			LeaderConfirm: types.Confirmation{
				Value:       record.LeaderConfirmValue,
				ConfirmedAt: record.LeaderConfirmAt,
			},
			OrderDate:       record.OrderDate,
			CustomerName:    record.CustomerName,
			CustomerAddress: record.CustomerAddress,
			VehicleID:       record.VehicleID,
			CreatedBy:       record.CreatedBy,
			CreatedByName:   record.CreatedByName,
		})
	}
	return rows, nil
}

// ListWarehouseQueue pages pending or already-confirmed items for the
// warehouse screens.
func (s *service) ListWarehouseQueue(ctx context.Context, input ListQueueInput) (*QueuePage, error) {
	if err := validateRange(input.Filters); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.QueueStatusAll
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown queue status %q", status))
	}

	records, total, err := s.repo.ListQueue(ctx, input.Filters, status, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouse queue")
	}

	rows := make([]QueueRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, newQueueRow(record))
	}
	page := pagination.NewPage(rows, input.Pagination, total)
	return &page, nil
}

func validateRange(filters RangeFilters) error {
	if filters.From.IsZero() || filters.To.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to dates are required")
	}
	if filters.To.Before(filters.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "to date must not precede from date")
	}
	return nil
}

// DayBounds expands two calendar dates into an inclusive start-of-day /
// end-of-day range in the dates' location.
func DayBounds(from, to time.Time) (time.Time, time.Time) {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, from.Location())
	end := time.Date(ty, tm, td, 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
	return start, end
}
