package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	customersvc "github.com/bedtex/dispatch-backend/internal/customers"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// CreateCustomer registers a stored customer record.
func CreateCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), customersvc.CreateCustomerInput{
			Code:            payload.Code,
			Name:            payload.Name,
			Address:         payload.Address,
			Phone:           payload.Phone,
			Note:            payload.Note,
			DebtLimit:       payload.DebtLimit,
			BypassDebtCheck: payload.BypassDebtCheck,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// UpdateCustomer mutates customer fields other than the code.
func UpdateCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParsePathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Update(r.Context(), customerID, customersvc.UpdateCustomerInput{
			Name:            payload.Name,
			Address:         payload.Address,
			Phone:           payload.Phone,
			Note:            payload.Note,
			DebtLimit:       payload.DebtLimit,
			DebtBalance:     payload.DebtBalance,
			BypassDebtCheck: payload.BypassDebtCheck,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// DeleteCustomer removes a stored customer record.
func DeleteCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParsePathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetCustomer returns one customer.
func GetCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := validators.ParsePathUUID(chi.URLParam(r, "customerID"), "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// SearchCustomers fuzzy-matches customers by name or code.
func SearchCustomers(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		customers, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": customers})
	}
}

type createCustomerRequest struct {
	Code            string          `json:"code" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	Address         string          `json:"address,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Note            string          `json:"note,omitempty"`
	DebtLimit       decimal.Decimal `json:"debt_limit"`
	BypassDebtCheck bool            `json:"bypass_debt_check"`
}

type updateCustomerRequest struct {
	Name            *string          `json:"name,omitempty"`
	Address         *string          `json:"address,omitempty"`
	Phone           *string          `json:"phone,omitempty"`
	Note            *string          `json:"note,omitempty"`
	DebtLimit       *decimal.Decimal `json:"debt_limit,omitempty"`
	DebtBalance     *decimal.Decimal `json:"debt_balance,omitempty"`
	BypassDebtCheck *bool            `json:"bypass_debt_check,omitempty"`
}
