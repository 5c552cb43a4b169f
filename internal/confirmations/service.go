package confirmations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bedtex/dispatch-backend/internal/orders"
	"github.com/bedtex/dispatch-backend/pkg/auth"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/db/models"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/outbox"
	"github.com/bedtex/dispatch-backend/pkg/types"
)

// Service exposes the two confirmation marks and the batch path.
type Service interface {
	ConfirmWarehouse(ctx context.Context, actor auth.Actor, orderID uuid.UUID, stt int, value string) (*orders.OrderDTO, error)
	ConfirmLeader(ctx context.Context, actor auth.Actor, orderID uuid.UUID, stt int, value string) (*orders.OrderDTO, error)
	ConfirmBatch(ctx context.Context, actor auth.Actor, updates []BatchUpdate) []BatchResult
}

// BatchUpdate is one entry of the bulk confirmation path. Either value may be
// set; both set applies both marks to the same item.
type BatchUpdate struct {
	OrderID        uuid.UUID
	Stt            int
	WarehouseValue *string
	LeaderValue    *string
}

// BatchResult reports the outcome of one batch entry. Error is nil on success.
type BatchResult struct {
	OrderID uuid.UUID       `json:"order_id"`
	Stt     int             `json:"stt"`
	Error   *types.APIError `json:"error,omitempty"`
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	events   eventEmitter
}

// NewService constructs the confirmation service.
func NewService(repo *Repository, dbClient *db.Client, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("confirmation repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, events: events}, nil
}

// ConfirmWarehouse sets the warehouse mark on one item. Warehouse staff may
// only confirm items stored in their own warehouse; other roles are unscoped.
// Re-confirming overwrites the value and timestamp.
func (s *service) ConfirmWarehouse(ctx context.Context, actor auth.Actor, orderID uuid.UUID, stt int, value string) (*orders.OrderDTO, error) {
	item, err := s.resolveItem(ctx, orderID, stt)
	if err != nil {
		return nil, err
	}
	if !actor.CanConfirmWarehouse(item.Warehouse) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("warehouse staff may only confirm items in their own warehouse (%s)", item.Warehouse))
	}

	if err := s.applyConfirmation(ctx, actor, orderID, item, "warehouse", value); err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// ConfirmLeader sets the leader mark on one item. Warehouse staff cannot act
// as the dispatch leader; any other role can, regardless of item warehouse.
func (s *service) ConfirmLeader(ctx context.Context, actor auth.Actor, orderID uuid.UUID, stt int, value string) (*orders.OrderDTO, error) {
	if actor.Role == enums.StaffRoleWarehouse {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse staff cannot set leader confirmations")
	}

	item, err := s.resolveItem(ctx, orderID, stt)
	if err != nil {
		return nil, err
	}

	if err := s.applyConfirmation(ctx, actor, orderID, item, "leader", value); err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// ConfirmBatch applies each update independently. One failing entry never
// rolls back the others; its error travels in that entry's result.
func (s *service) ConfirmBatch(ctx context.Context, actor auth.Actor, updates []BatchUpdate) []BatchResult {
	results := make([]BatchResult, 0, len(updates))
	for _, update := range updates {
		result := BatchResult{OrderID: update.OrderID, Stt: update.Stt}
		if err := s.applyBatchUpdate(ctx, actor, update); err != nil {
			result.Error = apiErrorFrom(err)
		}
		results = append(results, result)
	}
	return results
}

func (s *service) applyBatchUpdate(ctx context.Context, actor auth.Actor, update BatchUpdate) error {
	if update.WarehouseValue == nil && update.LeaderValue == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse_value or leader_value is required")
	}

	if update.WarehouseValue != nil {
		if _, err := s.ConfirmWarehouse(ctx, actor, update.OrderID, update.Stt, *update.WarehouseValue); err != nil {
			return err
		}
	}
	if update.LeaderValue != nil {
		if _, err := s.ConfirmLeader(ctx, actor, update.OrderID, update.Stt, *update.LeaderValue); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) applyConfirmation(ctx context.Context, actor auth.Actor, orderID uuid.UUID, item *models.OrderItem, kind, value string) error {
	now := time.Now()
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var writeErr error
		switch kind {
		case "warehouse":
			writeErr = txRepo.SetWarehouseConfirm(ctx, item.ID, value, now)
		default:
			writeErr = txRepo.SetLeaderConfirm(ctx, item.ID, value, now)
		}
		if writeErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, writeErr, "db: set confirmation")
		}
		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: map[string]any{
				"order_id":     orderID.String(),
				"item_id":      item.ID.String(),
				"stt":          item.Stt,
				"confirmation": kind,
				"value":        value,
			},
			Version: 1,
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply confirmation")
	}
	return nil
}

func (s *service) resolveItem(ctx context.Context, orderID uuid.UUID, stt int) (*models.OrderItem, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	item := order.ItemBySeq(stt)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order has no item %d", stt))
	}
	return item, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load updated order")
	}
	return orders.NewOrderDTO(order), nil
}

func apiErrorFrom(err error) *types.APIError {
	typed := pkgerrors.As(err)
	if typed == nil {
		return &types.APIError{
			Code:    string(pkgerrors.CodeInternal),
			Message: err.Error(),
		}
	}
	out := &types.APIError{
		Code:    string(typed.Code()),
		Message: typed.Message(),
	}
	if pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		out.Details = typed.Details()
	}
	return out
}
