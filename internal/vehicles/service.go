package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/pkg/auth"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/outbox"
)

// Service exposes vehicle management operations.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateVehicleInput) (*VehicleDTO, error)
	Update(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	Delete(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID) error
	Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context, filters ListFilters) ([]VehicleDTO, error)
	SetPrinted(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, printed bool) (*VehicleDTO, error)
	SetCompleted(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, completed bool) (*VehicleDTO, error)
}

// CreateVehicleInput holds the validated payload to create a vehicle.
type CreateVehicleInput struct {
	Class       enums.VehicleClass
	TimeSlot    string
	Destination string
	Date        time.Time
	Note        *string
}

// UpdateVehicleInput holds optional mutation values for a vehicle.
type UpdateVehicleInput struct {
	Class       *enums.VehicleClass
	TimeSlot    *string
	Destination *string
	Date        *time.Time
	Note        *string
}

type orderCounter interface {
	CountByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	orders   orderCounter
	events   eventEmitter
}

// NewService constructs the vehicle service.
func NewService(repo *Repository, dbClient *db.Client, orders orderCounter, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order counter required")
	}
	return &service{repo: repo, dbClient: dbClient, orders: orders, events: events}, nil
}

// Create inserts a new vehicle. The departure date must not be in the past.
func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateVehicleInput) (*VehicleDTO, error) {
	if !input.Class.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown vehicle class %q", input.Class))
	}
	if strings.TrimSpace(input.Destination) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination is required")
	}
	date := startOfDay(input.Date)
	if date.Before(startOfDay(time.Now())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be today or in the future")
	}

	vehicle := &models.Vehicle{
		ID:          uuid.New(),
		Class:       input.Class,
		TimeSlot:    strings.TrimSpace(input.TimeSlot),
		Destination: strings.TrimSpace(input.Destination),
		Date:        date,
		Note:        input.Note,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert vehicle")
	}
	return NewVehicleDTO(vehicle), nil
}

// Update applies the provided fields to an existing vehicle.
func (s *service) Update(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if input.Class != nil {
		if !input.Class.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown vehicle class %q", *input.Class))
		}
		vehicle.Class = *input.Class
	}
	if input.TimeSlot != nil {
		vehicle.TimeSlot = strings.TrimSpace(*input.TimeSlot)
	}
	if input.Destination != nil {
		dest := strings.TrimSpace(*input.Destination)
		if dest == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination is required")
		}
		vehicle.Destination = dest
	}
	if input.Date != nil {
		vehicle.Date = startOfDay(*input.Date)
	}
	if input.Note != nil {
		vehicle.Note = input.Note
	}

	if err := s.repo.Save(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update vehicle")
	}
	return NewVehicleDTO(vehicle), nil
}

// Delete removes the vehicle unless any order still references it.
func (s *service) Delete(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID) error {
	if _, err := s.loadVehicle(ctx, vehicleID); err != nil {
		return err
	}

	count, err := s.orders.CountByVehicle(ctx, vehicleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count referencing orders")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("vehicle is referenced by %d order(s) and cannot be deleted", count),
		).WithDetails(map[string]any{
			"reason":      "vehicle_in_use",
			"order_count": count,
		})
	}

	if err := s.repo.Delete(ctx, vehicleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete vehicle")
	}
	return nil
}

// Get loads one vehicle.
func (s *service) Get(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return NewVehicleDTO(vehicle), nil
}

// List returns the filtered vehicle listing.
func (s *service) List(ctx context.Context, filters ListFilters) ([]VehicleDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return NewVehicleListDTO(rows), nil
}

// SetPrinted toggles the loading-sheet-printed flag.
func (s *service) SetPrinted(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, printed bool) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.IsPrinted = printed
	if err := s.repo.Save(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update vehicle")
	}
	return NewVehicleDTO(vehicle), nil
}

// SetCompleted toggles the run-completed flag and emits the completion event.
func (s *service) SetCompleted(ctx context.Context, actor auth.Actor, vehicleID uuid.UUID, completed bool) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.IsCompleted = completed

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, vehicle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update vehicle")
		}
		if !completed || s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVehicleCompleted,
			AggregateType: enums.AggregateVehicle,
			AggregateID:   vehicle.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"vehicle_id":  vehicle.ID.String(),
				"destination": vehicle.Destination,
				"date":        vehicle.Date.Format("2006-01-02"),
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete vehicle")
	}
	return NewVehicleDTO(vehicle), nil
}

func (s *service) loadVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
