package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
)

// ListFilters narrows the order listing.
type ListFilters struct {
	From         *time.Time
	To           *time.Time
	CustomerName string
	CreatedBy    *uuid.UUID
	VehicleID    *uuid.UUID
}

// Repository wires together order and order-item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the order with its items in sequence order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stt ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// SaveHeader updates the order row without touching its items.
func (r *Repository) SaveHeader(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"customer_code":    order.Customer.Code,
			"customer_name":    order.Customer.Name,
			"customer_address": order.Customer.Address,
			"customer_phone":   order.Customer.Phone,
			"customer_note":    order.Customer.Note,
			"order_date":       order.OrderDate,
			"updated_at":       time.Now(),
		}).
		Error
}

// ReplaceItems swaps the order's full item set. Item ids supplied by the
// caller are preserved so confirmed items keep their identity across updates.
func (r *Repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// Delete removes the order; items follow via the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Order{}).Error
}

// SetVehicle points the order at a vehicle, or clears the link when nil.
func (r *Repository) SetVehicle(ctx context.Context, orderID uuid.UUID, vehicleID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"vehicle_id": vehicleID, "updated_at": time.Now()}).
		Error
}

// CountByVehicle returns how many orders currently reference the vehicle.
func (r *Repository) CountByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&count).
		Error
	return count, err
}

// FindItemByID loads one item regardless of which order owns it. Used by the
// compensation re-check to resolve source items.
func (r *Repository) FindItemByID(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SumCompensation totals the quantities of items compensating the given
// source item. excludeOrderID removes the order currently being rewritten so
// an update is compared against everyone else's compensations only.
func (r *Repository) SumCompensation(ctx context.Context, sourceItemID uuid.UUID, excludeOrderID *uuid.UUID) (decimal.Decimal, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("source_item_id = ?", sourceItemID)
	if excludeOrderID != nil {
		qb = qb.Where("order_id <> ?", *excludeOrderID)
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := qb.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// List pages orders filtered by date range, fuzzy customer name, creator, and
// vehicle. Items are preloaded in sequence order.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[models.Order], error) {
	params = params.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.From != nil {
		qb = qb.Where("order_date >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("order_date <= ?", *filters.To)
	}
	if name := strings.TrimSpace(filters.CustomerName); name != "" {
		qb = qb.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filters.CreatedBy != nil {
		qb = qb.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.VehicleID != nil {
		qb = qb.Where("vehicle_id = ?", *filters.VehicleID)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := qb.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stt ASC")
		}).
		Order("order_date DESC").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	page := pagination.NewPage(rows, params, total)
	return &page, nil
}
