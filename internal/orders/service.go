package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/internal/reconciliation"
	"github.com/bedtex/dispatch-backend/pkg/auth"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/outbox"
	"github.com/bedtex/dispatch-backend/pkg/pagination"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// Service exposes the order aggregate operations.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, input CreateOrderInput) (*OrderDTO, error)
	Update(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	Delete(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListOrdersInput) (*OrderListDTO, error)
	AssignVehicle(ctx context.Context, actor auth.Actor, orderID uuid.UUID, vehicleID *uuid.UUID) (*OrderDTO, error)
}

// CustomerInput is an inline customer description for orders placed without a
// stored customer record.
type CustomerInput struct {
	Code    string
	Name    string
	Address string
	Phone   string
	Note    string
}

// ItemInput holds one validated order line. ID is set on updates so confirmed
// items keep their identity; new items get a fresh id.
type ItemInput struct {
	ID               *uuid.UUID
	ProductName      string
	Size             *string
	Unit             string
	Quantity         decimal.Decimal
	Warehouse        enums.Warehouse
	CmQuantity       decimal.Decimal
	Note             *string
	SourceOrderID    *uuid.UUID
	SourceItemID     *uuid.UUID
	MaxCompensateQty *decimal.Decimal
}

// CreateOrderInput holds the validated payload to create an order. Exactly one
// of CustomerID and Customer must be provided.
type CreateOrderInput struct {
	CustomerID *uuid.UUID
	Customer   *CustomerInput
	OrderDate  time.Time
	VehicleID  *uuid.UUID
	Items      []ItemInput
}

// UpdateOrderInput replaces the order's item set and optionally its header
// fields. Nil header fields are left untouched.
type UpdateOrderInput struct {
	Customer  *CustomerInput
	OrderDate *time.Time
	Items     []ItemInput
}

// ListOrdersInput wraps listing filters and pagination.
type ListOrdersInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

type customerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type vehicleLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	customers customerLoader
	vehicles  vehicleLoader
	events    eventEmitter
}

// NewService constructs the order service.
func NewService(repo *Repository, dbClient *db.Client, customers customerLoader, vehicles vehicleLoader, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		customers: customers,
		vehicles:  vehicles,
		events:    events,
	}, nil
}

// Create validates the items and customer, then persists the order together
// with its items and outbox event in one transaction.
func (s *service) Create(ctx context.Context, actor auth.Actor, input CreateOrderInput) (*OrderDTO, error) {
	orderDate := startOfDay(time.Now())
	if !input.OrderDate.IsZero() {
		orderDate = startOfDay(input.OrderDate)
	}
	if orderDate.Before(startOfDay(time.Now())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_date must be today or in the future")
	}

	snapshot, err := s.resolveCustomer(ctx, input.CustomerID, input.Customer)
	if err != nil {
		return nil, err
	}

	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	if input.VehicleID != nil {
		if err := s.ensureVehicleExists(ctx, *input.VehicleID); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		ID:            uuid.New(),
		Customer:      *snapshot,
		OrderDate:     orderDate,
		VehicleID:     input.VehicleID,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
	}
	order.Items = buildItems(order.ID, input.Items)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := s.ensureCompensationWithinShortage(ctx, txRepo, nil, order.Items); err != nil {
			return err
		}
		if err := txRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		return s.emit(ctx, tx, enums.EventOrderCreated, order.ID, actor, orderEventData(order))
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created order")
	}
	return NewOrderDTO(created), nil
}

// Update replaces the order's item set after checking the confirmed-item
// invariants: a warehouse-confirmed item must survive by id and keep its
// warehouse. Confirmations on surviving items are carried over untouched.
func (s *service) Update(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	existing, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	newItems := buildItems(orderID, input.Items)
	newByID := make(map[uuid.UUID]*models.OrderItem, len(newItems))
	for i := range newItems {
		newByID[newItems[i].ID] = &newItems[i]
	}

	for _, prev := range existing.Items {
		if !prev.WarehouseConfirm.IsSet() {
			continue
		}
		replacement, ok := newByID[prev.ID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("item %q is warehouse-confirmed and cannot be removed", prev.ProductName),
			).WithDetails(map[string]any{
				"reason":       "confirmed_item_deleted",
				"item_id":      prev.ID.String(),
				"product_name": prev.ProductName,
			})
		}
		if replacement.Warehouse != prev.Warehouse {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("item %q is warehouse-confirmed; warehouse cannot change from %s", prev.ProductName, prev.Warehouse),
			).WithDetails(map[string]any{
				"reason":       "confirmed_warehouse_changed",
				"item_id":      prev.ID.String(),
				"product_name": prev.ProductName,
				"warehouse":    prev.Warehouse.String(),
			})
		}
	}

	// Surviving items keep their confirmations and ignore flag.
	for i := range newItems {
		for _, prev := range existing.Items {
			if prev.ID == newItems[i].ID {
				newItems[i].WarehouseConfirm = prev.WarehouseConfirm
				newItems[i].LeaderConfirm = prev.LeaderConfirm
				newItems[i].ShortageIgnored = prev.ShortageIgnored
				newItems[i].CreatedAt = prev.CreatedAt
				break
			}
		}
	}

	if input.Customer != nil {
		existing.Customer = snapshotFromInput(*input.Customer)
	}
	if input.OrderDate != nil {
		existing.OrderDate = startOfDay(*input.OrderDate)
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := s.ensureCompensationWithinShortage(ctx, txRepo, &orderID, newItems); err != nil {
			return err
		}
		if err := txRepo.ReplaceItems(ctx, orderID, newItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace order items")
		}
		if err := txRepo.SaveHeader(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order header")
		}
		return s.emit(ctx, tx, enums.EventOrderUpdated, orderID, actor, map[string]any{
			"order_id":   orderID.String(),
			"item_count": len(newItems),
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load updated order")
	}
	return NewOrderDTO(updated), nil
}

// Delete removes the order unless any item is warehouse-confirmed.
func (s *service) Delete(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	existing, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if existing.HasConfirmedItems() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			"order has warehouse-confirmed items and cannot be deleted",
		).WithDetails(map[string]any{
			"reason":   "has_confirmed_items",
			"order_id": orderID.String(),
		})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
		}
		return s.emit(ctx, tx, enums.EventOrderDeleted, orderID, actor, map[string]any{
			"order_id": orderID.String(),
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// Get loads one order with its items.
func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// List pages the order listing.
func (s *service) List(ctx context.Context, input ListOrdersInput) (*OrderListDTO, error) {
	page, err := s.repo.List(ctx, input.Filters, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *NewOrderDTO(&page.Items[i]))
	}
	out := pagination.NewPage(items, pagination.Params{Page: page.Page, PageSize: page.PageSize}, page.Total)
	return &out, nil
}

// AssignVehicle sets or clears the order's vehicle link. Date matching between
// vehicle and order is deliberately not enforced here; dispatcher screens
// filter same-day vehicles themselves.
func (s *service) AssignVehicle(ctx context.Context, actor auth.Actor, orderID uuid.UUID, vehicleID *uuid.UUID) (*OrderDTO, error) {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	if vehicleID != nil {
		if err := s.ensureVehicleExists(ctx, *vehicleID); err != nil {
			return nil, err
		}
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SetVehicle(ctx, orderID, vehicleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set order vehicle")
		}
		data := map[string]any{"order_id": orderID.String()}
		if vehicleID != nil {
			data["vehicle_id"] = vehicleID.String()
		}
		return s.emit(ctx, tx, enums.EventVehicleAssigned, orderID, actor, data)
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign vehicle")
	}

	updated, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load updated order")
	}
	return NewOrderDTO(updated), nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ensureVehicleExists(ctx context.Context, vehicleID uuid.UUID) error {
	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return nil
}

// resolveCustomer produces the snapshot embedded into the new order. When a
// stored customer is referenced its debt standing is checked first.
func (s *service) resolveCustomer(ctx context.Context, customerID *uuid.UUID, inline *CustomerInput) (*types.CustomerSnapshot, error) {
	if customerID == nil && inline == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id or customer is required")
	}
	if customerID != nil {
		customer, err := s.customers.FindByID(ctx, *customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if !customer.BypassDebtCheck && customer.DebtBalance.GreaterThan(customer.DebtLimit) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("customer %q is over their debt limit", customer.Name),
			).WithDetails(map[string]any{
				"reason":       "debt_limit_exceeded",
				"debt_balance": customer.DebtBalance.String(),
				"debt_limit":   customer.DebtLimit.String(),
			})
		}
		snapshot := customer.Snapshot()
		return &snapshot, nil
	}

	if strings.TrimSpace(inline.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	snapshot := snapshotFromInput(*inline)
	return &snapshot, nil
}

// ensureCompensationWithinShortage re-validates every compensation item in the
// submission against the remaining shortage read fresh inside the write
// transaction. Quantities aimed at the same source item accumulate.
func (s *service) ensureCompensationWithinShortage(ctx context.Context, repo *Repository, excludeOrderID *uuid.UUID, items []models.OrderItem) error {
	demands := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range items {
		if item.SourceItemID == nil {
			continue
		}
		demands[*item.SourceItemID] = demands[*item.SourceItemID].Add(item.Quantity)
	}
	if len(demands) == 0 {
		return nil
	}

	for sourceID, requested := range demands {
		source, err := repo.FindItemByID(ctx, sourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "compensation source item not found").
					WithDetails(map[string]any{"source_item_id": sourceID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load compensation source item")
		}

		remaining := decimal.Zero
		if deficit, ok := reconciliation.ComputeDeficit(*source); ok && deficit.IsNegative() {
			compensated, err := repo.SumCompensation(ctx, sourceID, excludeOrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum existing compensations")
			}
			remaining = reconciliation.RemainingShortage(deficit, compensated)
		}

		if requested.GreaterThan(remaining) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("compensation for %q exceeds the remaining shortage of %s", source.ProductName, remaining.String()),
			).WithDetails(map[string]any{
				"reason":       "over_compensation",
				"product_name": source.ProductName,
				"remaining":    remaining.String(),
			})
		}
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, orderID uuid.UUID, actor auth.Actor, data any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
		Data:          data,
		Version:       1,
	})
}

func orderEventData(order *models.Order) map[string]any {
	data := map[string]any{
		"order_id":      order.ID.String(),
		"customer_name": order.Customer.Name,
		"order_date":    order.OrderDate.Format("2006-01-02"),
		"item_count":    len(order.Items),
	}
	if order.VehicleID != nil {
		data["vehicle_id"] = order.VehicleID.String()
	}
	return data
}

// validateItems runs full item validation; first failure wins.
func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for i, item := range items {
		stt := i + 1
		if strings.TrimSpace(item.ProductName) == "" {
			return itemValidationError(stt, "product_name", "product_name is required")
		}
		if strings.TrimSpace(item.Unit) == "" {
			return itemValidationError(stt, "unit", "unit is required")
		}
		if !item.Warehouse.IsValid() {
			return itemValidationError(stt, "warehouse", fmt.Sprintf("unknown warehouse %q", item.Warehouse))
		}
		if !item.Quantity.IsPositive() {
			return itemValidationError(stt, "quantity", "quantity must be greater than zero")
		}
		if item.CmQuantity.IsNegative() {
			return itemValidationError(stt, "cm_quantity", "cm_quantity cannot be negative")
		}
		if (item.SourceItemID == nil) != (item.SourceOrderID == nil) {
			return itemValidationError(stt, "source_item_id", "source_order_id and source_item_id must be set together")
		}
		if item.MaxCompensateQty != nil && item.MaxCompensateQty.IsNegative() {
			return itemValidationError(stt, "max_compensate_qty", "max_compensate_qty cannot be negative")
		}
	}
	return nil
}

func itemValidationError(stt int, field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"stt": stt, "field": field})
}

// buildItems materializes inputs as stored items with sequential stt values.
func buildItems(orderID uuid.UUID, inputs []ItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		id := uuid.New()
		if in.ID != nil {
			id = *in.ID
		}
		items = append(items, models.OrderItem{
			ID:               id,
			OrderID:          orderID,
			Stt:              i + 1,
			ProductName:      strings.TrimSpace(in.ProductName),
			Size:             in.Size,
			Unit:             strings.TrimSpace(in.Unit),
			Quantity:         in.Quantity,
			Warehouse:        in.Warehouse,
			CmQuantity:       in.CmQuantity,
			Note:             in.Note,
			SourceOrderID:    in.SourceOrderID,
			SourceItemID:     in.SourceItemID,
			MaxCompensateQty: in.MaxCompensateQty,
		})
	}
	return items
}

func snapshotFromInput(in CustomerInput) types.CustomerSnapshot {
	return types.CustomerSnapshot{
		Code:    strings.TrimSpace(in.Code),
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
		Note:    in.Note,
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
