package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
)

// VehicleDTO is the wire representation of a dispatch vehicle.
type VehicleDTO struct {
	ID          uuid.UUID          `json:"id"`
	Class       enums.VehicleClass `json:"class"`
	TimeSlot    string             `json:"time_slot"`
	Destination string             `json:"destination"`
	Date        time.Time          `json:"date"`
	Note        *string            `json:"note,omitempty"`
	IsPrinted   bool               `json:"is_printed"`
	IsCompleted bool               `json:"is_completed"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewVehicleDTO maps a stored vehicle onto its wire shape.
func NewVehicleDTO(vehicle *models.Vehicle) *VehicleDTO {
	if vehicle == nil {
		return nil
	}
	return &VehicleDTO{
		ID:          vehicle.ID,
		Class:       vehicle.Class,
		TimeSlot:    vehicle.TimeSlot,
		Destination: vehicle.Destination,
		Date:        vehicle.Date,
		Note:        vehicle.Note,
		IsPrinted:   vehicle.IsPrinted,
		IsCompleted: vehicle.IsCompleted,
		CreatedAt:   vehicle.CreatedAt,
		UpdatedAt:   vehicle.UpdatedAt,
	}
}

// NewVehicleListDTO maps a slice of vehicles.
func NewVehicleListDTO(rows []models.Vehicle) []VehicleDTO {
	out := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewVehicleDTO(&rows[i]))
	}
	return out
}
