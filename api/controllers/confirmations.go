package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/api/middleware"
	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	confirmsvc "github.com/bedtex/dispatch-backend/internal/confirmations"
	"github.com/bedtex/dispatch-backend/pkg/auth"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// ConfirmWarehouse sets the warehouse mark on one order item.
func ConfirmWarehouse(svc confirmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return confirmHandler(logg, func(r *http.Request, target confirmTarget) (any, error) {
		return svc.ConfirmWarehouse(r.Context(), target.actor, target.orderID, target.stt, target.value)
	})
}

// ConfirmLeader sets the leader mark on one order item.
func ConfirmLeader(svc confirmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return confirmHandler(logg, func(r *http.Request, target confirmTarget) (any, error) {
		return svc.ConfirmLeader(r.Context(), target.actor, target.orderID, target.stt, target.value)
	})
}

// ConfirmBatch applies many confirmation marks with per-entry outcomes.
func ConfirmBatch(svc confirmsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload confirmBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updates := make([]confirmsvc.BatchUpdate, 0, len(payload.Updates))
		for _, entry := range payload.Updates {
			orderID, err := uuid.Parse(entry.OrderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
				return
			}
			updates = append(updates, confirmsvc.BatchUpdate{
				OrderID:        orderID,
				Stt:            entry.Stt,
				WarehouseValue: entry.WarehouseValue,
				LeaderValue:    entry.LeaderValue,
			})
		}

		results := svc.ConfirmBatch(r.Context(), actor, updates)
		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

type confirmRequest struct {
	Value string `json:"value" validate:"required"`
}

type confirmBatchEntry struct {
	OrderID        string  `json:"order_id" validate:"required"`
	Stt            int     `json:"stt" validate:"required,min=1"`
	WarehouseValue *string `json:"warehouse_value,omitempty"`
	LeaderValue    *string `json:"leader_value,omitempty"`
}

type confirmBatchRequest struct {
	Updates []confirmBatchEntry `json:"updates" validate:"required,min=1,dive"`
}

type confirmTarget struct {
	actor   auth.Actor
	orderID uuid.UUID
	stt     int
	value   string
}

func confirmHandler(logg *logger.Logger, apply func(*http.Request, confirmTarget) (any, error)) http.HandlerFunc {
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

		stt, err := validators.ParseQueryInt(r, "stt", 0, 1, 1<<16)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if stt == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query parameter stt is required").WithDetails(map[string]any{"field": "stt"}))
			return
		}

		var payload confirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := apply(r, confirmTarget{actor: actor, orderID: orderID, stt: stt, value: payload.Value})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
