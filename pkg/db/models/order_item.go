package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// OrderItem is one requested line of goods within an order. Items are owned
// by their order: they are created and replaced through whole-order writes
// and mutated individually only by the two confirmation paths.
//
// The compensation fields link a follow-up item to an earlier short item.
// MaxCompensateQty is the client-side cap captured at creation; the write
// path re-validates against the remaining shortage regardless.
type OrderItem struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index:ix_order_items_order"`
	Stt              int                `gorm:"column:stt;not null"`
	ProductName      string             `gorm:"column:product_name;not null"`
	Size             *string            `gorm:"column:size"`
	Unit             string             `gorm:"column:unit;not null"`
	Quantity         decimal.Decimal    `gorm:"column:quantity;type:numeric(14,3);not null"`
	Warehouse        enums.Warehouse    `gorm:"column:warehouse;type:text;not null"`
	CmQuantity       decimal.Decimal    `gorm:"column:cm_quantity;type:numeric(14,3);not null;default:0"`
	Note             *string            `gorm:"column:note"`
	WarehouseConfirm types.Confirmation `gorm:"embedded;embeddedPrefix:warehouse_confirm_"`
	LeaderConfirm    types.Confirmation `gorm:"embedded;embeddedPrefix:leader_confirm_"`
	SourceOrderID    *uuid.UUID         `gorm:"column:source_order_id;type:uuid"`
	SourceItemID     *uuid.UUID         `gorm:"column:source_item_id;type:uuid;index:ix_order_items_source_item"`
	MaxCompensateQty *decimal.Decimal   `gorm:"column:max_compensate_qty;type:numeric(14,3)"`
	ShortageIgnored  bool               `gorm:"column:shortage_ignored;not null;default:false"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsCompensation reports whether the item declares itself as compensating a
// shortage on a prior item.
func (i OrderItem) IsCompensation() bool {
	return i.SourceItemID != nil
}
