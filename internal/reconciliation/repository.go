package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
)

// itemRecord is one order item joined with its order's denormalized context.
type itemRecord struct {
	OrderID               uuid.UUID
	ItemID                uuid.UUID
	Stt                   int
	ProductName           string
	Size                  *string
	Unit                  string
	Quantity              decimal.Decimal
	Warehouse             enums.Warehouse
	Note                  *string
	WarehouseConfirmValue *string
	WarehouseConfirmAt    *time.Time
	LeaderConfirmValue    *string
	LeaderConfirmAt       *time.Time
	OrderDate             time.Time
	CustomerName          string
	CustomerAddress       string
	VehicleID             *uuid.UUID
	CreatedBy             uuid.UUID
	CreatedByName         string
}

const itemSelectColumns = `
o.id AS order_id,
i.id AS item_id,
i.stt,
i.product_name,
i.size,
i.unit,
i.quantity,
i.warehouse,
i.note,
i.warehouse_confirm_value,
i.warehouse_confirm_at,
i.leader_confirm_value,
i.leader_confirm_at,
o.order_date,
o.customer_name,
o.customer_address,
o.vehicle_id,
o.created_by,
o.created_by_name`

// RangeFilters narrow the reconciliation scan.
type RangeFilters struct {
	From      time.Time
	To        time.Time
	CreatedBy *uuid.UUID
	Warehouse *enums.Warehouse
}

// Repository runs the cross-order item scans behind reconciliation views.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListItemsInRange returns every item of every order whose order date falls in
// the inclusive range, with order context attached.
func (r *Repository) ListItemsInRange(ctx context.Context, filters RangeFilters) ([]itemRecord, error) {
	qb := r.db.WithContext(ctx).
		Table("order_items i").
		Select(itemSelectColumns).
		Joins("JOIN orders o ON o.id = i.order_id").
		Where("o.order_date >= ? AND o.order_date <= ?", filters.From, filters.To)
	if filters.CreatedBy != nil {
		qb = qb.Where("o.created_by = ?", *filters.CreatedBy)
	}
	if filters.Warehouse != nil {
		qb = qb.Where("i.warehouse = ?", *filters.Warehouse)
	}

	var records []itemRecord
	err := qb.
		Order("o.order_date ASC").
		Order("o.id ASC").
		Order("i.stt ASC").
		Scan(&records).
		Error
	return records, err
}

// ListQueue pages items for the warehouse screens, filtered by whether the
// warehouse confirmation mark is present.
func (r *Repository) ListQueue(ctx context.Context, filters RangeFilters, status enums.QueueStatus, params pagination.Params) ([]itemRecord, int64, error) {
	params = params.Normalize()

	qb := r.db.WithContext(ctx).
		Table("order_items i").
		Joins("JOIN orders o ON o.id = i.order_id").
		Where("o.order_date >= ? AND o.order_date <= ?", filters.From, filters.To)
	if filters.Warehouse != nil {
		qb = qb.Where("i.warehouse = ?", *filters.Warehouse)
	}
	switch status {
	case enums.QueueStatusConfirmed:
		qb = qb.Where("i.warehouse_confirm_value IS NOT NULL AND TRIM(i.warehouse_confirm_value) <> ''")
	case enums.QueueStatusUnconfirmed:
		qb = qb.Where("i.warehouse_confirm_value IS NULL OR TRIM(i.warehouse_confirm_value) = ''")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []itemRecord
	err := qb.
		Select(itemSelectColumns).
		Order("o.order_date ASC").
		Order("o.id ASC").
		Order("i.stt ASC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Scan(&records).
		Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
