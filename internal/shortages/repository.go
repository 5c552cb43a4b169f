package shortages

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
)

// Repository runs the shortage-view scans and the ignore-flag write.
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

// ListOrdersByCustomerName loads every order whose snapshot name
// fuzzy-matches, items in sequence order.
func (r *Repository) ListOrdersByCustomerName(ctx context.Context, customerName string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stt ASC")
		}).
		Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(customerName))+"%").
		Order("order_date ASC").
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindItem loads one item scoped to its owning order.
func (r *Repository) FindItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND order_id = ?", itemID, orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SumCompensation totals the quantities of items compensating the source item.
func (r *Repository) SumCompensation(ctx context.Context, sourceItemID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("source_item_id = ?", sourceItemID).
		Scan(&row).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// MarkIgnored persists the ignore flag on the item.
func (r *Repository) MarkIgnored(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{"shortage_ignored": true, "updated_at": time.Now()}).
		Error
}
