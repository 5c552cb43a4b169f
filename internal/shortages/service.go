package shortages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/internal/reconciliation"
	"github.com/bedtex/dispatch-backend/pkg/auth"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/outbox"
)

// ShortageRow is one outstanding shortage in the customer-scoped view.
type ShortageRow struct {
	OrderID           uuid.UUID       `json:"order_id"`
	ItemID            uuid.UUID       `json:"item_id"`
	Stt               int             `json:"stt"`
	ProductName       string          `json:"product_name"`
	Size              *string         `json:"size,omitempty"`
	Unit              string          `json:"unit"`
	Warehouse         enums.Warehouse `json:"warehouse"`
	ShortageQty       decimal.Decimal `json:"shortage_qty"`
	CompensatedQty    decimal.Decimal `json:"compensated_qty"`
	RemainingShortage decimal.Decimal `json:"remaining_shortage"`
	OrderDate         time.Time       `json:"order_date"`
	CustomerName      string          `json:"customer_name"`
}

// Service exposes the outstanding-shortage view and the ignore operation.
type Service interface {
	ListRemainingShortages(ctx context.Context, customerName string) ([]ShortageRow, error)
	IgnoreShortage(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	events   eventEmitter
}

// NewService constructs the shortage service.
func NewService(repo *Repository, dbClient *db.Client, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shortage repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, events: events}, nil
}

// ListRemainingShortages walks every order of the fuzzy-matched customer and
// reports items whose shortage has not been fully compensated or ignored.
func (s *service) ListRemainingShortages(ctx context.Context, customerName string) ([]ShortageRow, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	orders, err := s.repo.ListOrdersByCustomerName(ctx, customerName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}

	rows := make([]ShortageRow, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			if item.ShortageIgnored {
				continue
			}
			deficit, ok := reconciliation.ComputeDeficit(item)
			if !ok || !deficit.IsNegative() {
				continue
			}
			compensated, err := s.repo.SumCompensation(ctx, item.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum compensations")
			}
			remaining := reconciliation.RemainingShortage(deficit, compensated)
			if !remaining.IsPositive() {
				continue
			}
			rows = append(rows, ShortageRow{
				OrderID:           order.ID,
				ItemID:            item.ID,
				Stt:               item.Stt,
				ProductName:       item.ProductName,
				Size:              item.Size,
				Unit:              item.Unit,
				Warehouse:         item.Warehouse,
				ShortageQty:       deficit.Abs(),
				CompensatedQty:    compensated,
				RemainingShortage: remaining,
				OrderDate:         order.OrderDate,
				CustomerName:      order.Customer.Name,
			})
		}
	}
	return rows, nil
}

// IgnoreShortage marks the item's shortage as deliberately closed. Repeating
// the call is a no-op; the flag only ever transitions to true.
func (s *service) IgnoreShortage(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) error {
	item, err := s.repo.FindItem(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	if item.ShortageIgnored {
		return nil
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkIgnored(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark shortage ignored")
		}
		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShortageIgnored,
			AggregateType: enums.AggregateShortage,
			AggregateID:   itemID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"order_id":     orderID.String(),
				"item_id":      itemID.String(),
				"product_name": item.ProductName,
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ignore shortage")
	}
	return nil
}
