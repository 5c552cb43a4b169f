package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// SurplusDeficitRow is one reconciled item. ConfirmedQty is the parsed leader
// value; Deficit is signed (negative = shortage). Denormalized order context
// rides along so reports render without further joins.
type SurplusDeficitRow struct {
	OrderID         uuid.UUID          `json:"order_id"`
	ItemID          uuid.UUID          `json:"item_id"`
	Stt             int                `json:"stt"`
	ProductName     string             `json:"product_name"`
	Size            *string            `json:"size,omitempty"`
	Unit            string             `json:"unit"`
	Warehouse       enums.Warehouse    `json:"warehouse"`
	Quantity        decimal.Decimal    `json:"quantity"`
	ConfirmedQty    decimal.Decimal    `json:"confirmed_qty"`
	Deficit         decimal.Decimal    `json:"deficit"`
	LeaderConfirm   types.Confirmation `json:"leader_confirm"`
	OrderDate       time.Time          `json:"order_date"`
	CustomerName    string             `json:"customer_name"`
	CustomerAddress string             `json:"customer_address"`
	VehicleID       *uuid.UUID         `json:"vehicle_id,omitempty"`
	CreatedBy       uuid.UUID          `json:"created_by"`
	CreatedByName   string             `json:"created_by_name"`
}

// QueueRow is one warehouse-screen entry.
type QueueRow struct {
	OrderID          uuid.UUID          `json:"order_id"`
	ItemID           uuid.UUID          `json:"item_id"`
	Stt              int                `json:"stt"`
	ProductName      string             `json:"product_name"`
	Size             *string            `json:"size,omitempty"`
	Unit             string             `json:"unit"`
	Warehouse        enums.Warehouse    `json:"warehouse"`
	Quantity         decimal.Decimal    `json:"quantity"`
	Note             *string            `json:"note,omitempty"`
	WarehouseConfirm types.Confirmation `json:"warehouse_confirm"`
	LeaderConfirm    types.Confirmation `json:"leader_confirm"`
	OrderDate        time.Time          `json:"order_date"`
	CustomerName     string             `json:"customer_name"`
	VehicleID        *uuid.UUID         `json:"vehicle_id,omitempty"`
}

// QueuePage is one page of warehouse queue rows.
type QueuePage = pagination.Page[QueueRow]

func newQueueRow(record itemRecord) QueueRow {
	return QueueRow{
		OrderID:     record.OrderID,
		ItemID:      record.ItemID,
		Stt:         record.Stt,
		ProductName: record.ProductName,
		Size:        record.Size,
		Unit:        record.Unit,
		Warehouse:   record.Warehouse,
		Quantity:    record.Quantity,
		Note:        record.Note,
		WarehouseConfirm: types.Confirmation{
			Value:       record.WarehouseConfirmValue,
			ConfirmedAt: record.WarehouseConfirmAt,
		},
		LeaderConfirm: types.Confirmation{
			Value:       record.LeaderConfirmValue,
			ConfirmedAt: record.LeaderConfirmAt,
		},
		OrderDate:    record.OrderDate,
		CustomerName: record.CustomerName,
		VehicleID:    record.VehicleID,
	}
}
