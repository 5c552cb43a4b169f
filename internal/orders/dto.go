package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// OrderItemDTO is the wire representation of one order line.
type OrderItemDTO struct {
	ID               uuid.UUID          `json:"id"`
	Stt              int                `json:"stt"`
	ProductName      string             `json:"product_name"`
	Size             *string            `json:"size,omitempty"`
	Unit             string             `json:"unit"`
	Quantity         decimal.Decimal    `json:"quantity"`
	Warehouse        enums.Warehouse    `json:"warehouse"`
	CmQuantity       decimal.Decimal    `json:"cm_quantity"`
	Note             *string            `json:"note,omitempty"`
	WarehouseConfirm types.Confirmation `json:"warehouse_confirm"`
	LeaderConfirm    types.Confirmation `json:"leader_confirm"`
	SourceOrderID    *uuid.UUID         `json:"source_order_id,omitempty"`
	SourceItemID     *uuid.UUID         `json:"source_item_id,omitempty"`
	MaxCompensateQty *decimal.Decimal   `json:"max_compensate_qty,omitempty"`
	ShortageIgnored  bool               `json:"shortage_ignored"`
}

// OrderDTO is the wire representation of an order with its items.
type OrderDTO struct {
	ID            uuid.UUID              `json:"id"`
	Customer      types.CustomerSnapshot `json:"customer"`
	OrderDate     time.Time              `json:"order_date"`
	VehicleID     *uuid.UUID             `json:"vehicle_id,omitempty"`
	Items         []OrderItemDTO         `json:"items"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	CreatedByName string                 `json:"created_by_name"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// OrderListDTO is one page of orders.
type OrderListDTO = pagination.Page[OrderDTO]

// NewOrderItemDTO maps a stored item onto its wire shape.
func NewOrderItemDTO(item models.OrderItem) OrderItemDTO {
	return OrderItemDTO{
		ID:               item.ID,
		Stt:              item.Stt,
		ProductName:      item.ProductName,
		Size:             item.Size,
		Unit:             item.Unit,
		Quantity:         item.Quantity,
		Warehouse:        item.Warehouse,
		CmQuantity:       item.CmQuantity,
		Note:             item.Note,
		WarehouseConfirm: item.WarehouseConfirm,
		LeaderConfirm:    item.LeaderConfirm,
		SourceOrderID:    item.SourceOrderID,
		SourceItemID:     item.SourceItemID,
		MaxCompensateQty: item.MaxCompensateQty,
		ShortageIgnored:  item.ShortageIgnored,
	}
}

// NewOrderDTO maps a stored order onto its wire shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, NewOrderItemDTO(item))
	}
	return &OrderDTO{
		ID:            order.ID,
		Customer:      order.Customer,
		OrderDate:     order.OrderDate,
		VehicleID:     order.VehicleID,
		Items:         items,
		CreatedBy:     order.CreatedBy,
		CreatedByName: order.CreatedByName,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}
