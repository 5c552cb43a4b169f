package confirmations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
)

// Repository reads orders and writes single-item confirmation marks.
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

// FindOrder loads the order with its items in sequence order.
func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
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

// SetWarehouseConfirm overwrites the item's warehouse confirmation mark.
func (r *Repository) SetWarehouseConfirm(ctx context.Context, itemID uuid.UUID, value string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"warehouse_confirm_value": value,
			"warehouse_confirm_at":    at,
			"updated_at":              at,
		}).
		Error
}

// SetLeaderConfirm overwrites the item's leader confirmation mark.
func (r *Repository) SetLeaderConfirm(ctx context.Context, itemID uuid.UUID, value string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"leader_confirm_value": value,
			"leader_confirm_at":    at,
			"updated_at":           at,
		}).
		Error
}
