package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/pkg/enums"
)

// Vehicle is a dispatch slot: a capacity class leaving for a destination on a
// given date. The two lifecycle flags are independent; printing the loading
// sheet and completing the run are separate acts.
type Vehicle struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Class       enums.VehicleClass `gorm:"column:class;type:text;not null"`
	TimeSlot    string             `gorm:"column:time_slot"`
	Destination string             `gorm:"column:destination;not null"`
	Date        time.Time          `gorm:"column:date;type:date;not null"`
	Note        *string            `gorm:"column:note"`
	IsPrinted   bool               `gorm:"column:is_printed;not null;default:false"`
	IsCompleted bool               `gorm:"column:is_completed;not null;default:false"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
