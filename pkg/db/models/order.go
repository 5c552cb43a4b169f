package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/pkg/types"
)

// Order is the aggregate root of the dispatch workflow. It owns an ordered
// sequence of items and carries the customer description captured when the
// order was placed. VehicleID is nil while the order is unassigned.
type Order struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Customer      types.CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_"`
	OrderDate     time.Time              `gorm:"column:order_date;type:date;not null"`
	VehicleID     *uuid.UUID             `gorm:"column:vehicle_id;type:uuid"`
	Items         []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedBy     uuid.UUID              `gorm:"column:created_by;type:uuid;not null"`
	CreatedByName string                 `gorm:"column:created_by_name;not null"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// HasConfirmedItems reports whether any item carries a warehouse confirmation.
// Such orders cannot be deleted and their confirmed items are locked.
func (o Order) HasConfirmedItems() bool {
	for _, item := range o.Items {
		if item.WarehouseConfirm.IsSet() {
			return true
		}
	}
	return false
}

// ItemBySeq returns the item at the given 1-based sequence number.
func (o Order) ItemBySeq(stt int) *OrderItem {
	for i := range o.Items {
		if o.Items[i].Stt == stt {
			return &o.Items[i]
		}
	}
	return nil
}
