package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/api/middleware"
	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	ordersvc "github.com/bedtex/dispatch-backend/internal/orders"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// CreateOrder handles new dispatch orders with their embedded items.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// UpdateOrder replaces an order's item set and header fields.
func UpdateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), actor, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// DeleteOrder removes an order that has no confirmed items yet.
func DeleteOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetOrder returns one order with its items.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders pages orders with optional date, customer, creator, and vehicle filters.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListOrdersQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AssignOrderVehicle sets or clears the order's vehicle.
func AssignOrderVehicle(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var vehicleID *uuid.UUID
		if payload.VehicleID != nil {
			parsed, err := uuid.Parse(*payload.VehicleID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id"))
				return
			}
			vehicleID = &parsed
		}

		order, err := svc.AssignVehicle(r.Context(), actor, orderID, vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type orderCustomerRequest struct {
	Code    string `json:"code,omitempty"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Note    string `json:"note,omitempty"`
}

type orderItemRequest struct {
	ID               *string         `json:"id,omitempty"`
	ProductName      string          `json:"product_name" validate:"required"`
	Size             *string         `json:"size,omitempty"`
	Unit             string          `json:"unit" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity"`
	Warehouse        string          `json:"warehouse" validate:"required"`
	CmQuantity       decimal.Decimal `json:"cm_quantity"`
	Note             *string         `json:"note,omitempty"`
	SourceOrderID    *string         `json:"source_order_id,omitempty"`
	SourceItemID     *string         `json:"source_item_id,omitempty"`
	MaxCompensateQty *decimal.Decimal `json:"max_compensate_qty,omitempty"`
}

type createOrderRequest struct {
	CustomerID *string               `json:"customer_id,omitempty"`
	Customer   *orderCustomerRequest `json:"customer,omitempty"`
	OrderDate  string                `json:"order_date,omitempty"`
	VehicleID  *string               `json:"vehicle_id,omitempty"`
	Items      []orderItemRequest    `json:"items" validate:"required,min=1,dive"`
}

type updateOrderRequest struct {
	Customer  *orderCustomerRequest `json:"customer,omitempty"`
	OrderDate *string               `json:"order_date,omitempty"`
	Items     []orderItemRequest    `json:"items" validate:"required,min=1,dive"`
}

type assignVehicleRequest struct {
	VehicleID *string `json:"vehicle_id"`
}

func (r createOrderRequest) toInput() (ordersvc.CreateOrderInput, error) {
	input := ordersvc.CreateOrderInput{}

	if r.CustomerID != nil {
		id, err := uuid.Parse(*r.CustomerID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
		}
		input.CustomerID = &id
	}
	if r.Customer != nil {
		input.Customer = &ordersvc.CustomerInput{
			Code:    r.Customer.Code,
			Name:    r.Customer.Name,
			Address: r.Customer.Address,
			Phone:   r.Customer.Phone,
			Note:    r.Customer.Note,
		}
	}

	if strings.TrimSpace(r.OrderDate) != "" {
		date, err := time.Parse(validators.DateLayout, r.OrderDate)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order_date must be a yyyy-mm-dd date")
		}
		input.OrderDate = date
	}

	if r.VehicleID != nil {
		id, err := uuid.Parse(*r.VehicleID)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
		}
		input.VehicleID = &id
	}

	items, err := toItemInputs(r.Items)
	if err != nil {
		return input, err
	}
	input.Items = items
	return input, nil
}

func (r updateOrderRequest) toInput() (ordersvc.UpdateOrderInput, error) {
	input := ordersvc.UpdateOrderInput{}

	if r.Customer != nil {
		input.Customer = &ordersvc.CustomerInput{
			Code:    r.Customer.Code,
			Name:    r.Customer.Name,
			Address: r.Customer.Address,
			Phone:   r.Customer.Phone,
			Note:    r.Customer.Note,
		}
	}

	if r.OrderDate != nil {
		date, err := time.Parse(validators.DateLayout, *r.OrderDate)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order_date must be a yyyy-mm-dd date")
		}
		input.OrderDate = &date
	}

	items, err := toItemInputs(r.Items)
	if err != nil {
		return input, err
	}
	input.Items = items
	return input, nil
}

func toItemInputs(items []orderItemRequest) ([]ordersvc.ItemInput, error) {
	out := make([]ordersvc.ItemInput, 0, len(items))
	for _, item := range items {
		warehouse, err := enums.ParseWarehouse(strings.TrimSpace(item.Warehouse))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse")
		}

		converted := ordersvc.ItemInput{
			ProductName:      item.ProductName,
			Size:             item.Size,
			Unit:             item.Unit,
			Quantity:         item.Quantity,
			Warehouse:        warehouse,
			CmQuantity:       item.CmQuantity,
			Note:             item.Note,
			MaxCompensateQty: item.MaxCompensateQty,
		}

		if item.ID != nil {
			id, err := uuid.Parse(*item.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
			}
			converted.ID = &id
		}
		if item.SourceOrderID != nil {
			id, err := uuid.Parse(*item.SourceOrderID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source order id")
			}
			converted.SourceOrderID = &id
		}
		if item.SourceItemID != nil {
			id, err := uuid.Parse(*item.SourceItemID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source item id")
			}
			converted.SourceItemID = &id
		}

		out = append(out, converted)
	}
	return out, nil
}

func parseListOrdersQuery(r *http.Request) (ordersvc.ListOrdersInput, error) {
	input := ordersvc.ListOrdersInput{}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return input, err
	}
	if !from.IsZero() {
		input.Filters.From = &from
	}

	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return input, err
	}
	if !to.IsZero() {
		end := to.Add(24*time.Hour - time.Nanosecond)
		input.Filters.To = &end
	}

	input.Filters.CustomerName = strings.TrimSpace(r.URL.Query().Get("customer_name"))

	createdBy, err := validators.ParseQueryUUID(r, "created_by")
	if err != nil {
		return input, err
	}
	input.Filters.CreatedBy = createdBy

	vehicleID, err := validators.ParseQueryUUID(r, "vehicle_id")
	if err != nil {
		return input, err
	}
	input.Filters.VehicleID = vehicleID

	params, err := validators.ParsePagination(r)
	if err != nil {
		return input, err
	}
	input.Pagination = params

	return input, nil
}
