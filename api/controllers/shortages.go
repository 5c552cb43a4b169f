package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bedtex/dispatch-backend/api/middleware"
	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	shortagesvc "github.com/bedtex/dispatch-backend/internal/shortages"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// ListShortages returns a customer's open shortages available for compensation.
func ListShortages(svc shortagesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerName := strings.TrimSpace(r.URL.Query().Get("customer_name"))

		rows, err := svc.ListRemainingShortages(r.Context(), customerName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// IgnoreShortage closes a shortage without compensating it.
func IgnoreShortage(svc shortagesvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.IgnoreShortage(r.Context(), actor, orderID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ignored"})
	}
}
