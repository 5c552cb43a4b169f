package vehicles

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
)

// ListFilters narrows the vehicle listing.
type ListFilters struct {
	From        *time.Time
	To          *time.Time
	Destination string
	Completed   *bool
}

// Repository persists dispatch vehicles.
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

// FindByID loads one vehicle.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create inserts a new vehicle row.
func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// Save updates an existing vehicle row.
func (r *Repository) Save(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// Delete removes a vehicle by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vehicle{}).Error
}

// List returns vehicles filtered by date range, destination, and completion,
// most recent departure first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Vehicle, error) {
	qb := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if filters.From != nil {
		qb = qb.Where("date >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("date <= ?", *filters.To)
	}
	if dest := strings.TrimSpace(filters.Destination); dest != "" {
		qb = qb.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(dest)+"%")
	}
	if filters.Completed != nil {
		qb = qb.Where("is_completed = ?", *filters.Completed)
	}

	var rows []models.Vehicle
	err := qb.Order("date DESC").Order("time_slot ASC").Find(&rows).Error
	return rows, err
}
