package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	reconsvc "github.com/bedtex/dispatch-backend/internal/reconciliation"
	reportsvc "github.com/bedtex/dispatch-backend/internal/reports"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// ListSurplusDeficit returns the cross-order surplus/deficit listing.
func ListSurplusDeficit(svc reconsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseSurplusDeficitQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListSurplusDeficit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// ExportSurplusDeficit streams the same listing as an XLSX workbook.
func ExportSurplusDeficit(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseSurplusDeficitQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workbook, err := svc.SurplusDeficitWorkbook(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteFile(w, workbook.Filename, reportsvc.ContentTypeXLSX, workbook.Content)
	}
}

// ListWarehouseQueue pages items for the warehouse confirmation screens.
func ListWarehouseQueue(svc reconsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseRangeQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.QueueStatus(strings.TrimSpace(r.URL.Query().Get("status")))

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListWarehouseQueue(r.Context(), reconsvc.ListQueueInput{
			Filters:    filters,
			Status:     status,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func parseSurplusDeficitQuery(r *http.Request) (reconsvc.ListSurplusDeficitInput, error) {
	filters, err := parseRangeQuery(r)
	if err != nil {
		return reconsvc.ListSurplusDeficitInput{}, err
	}
	status := enums.DeficitFilter(strings.TrimSpace(r.URL.Query().Get("status")))
	return reconsvc.ListSurplusDeficitInput{Filters: filters, Status: status}, nil
}

func parseRangeQuery(r *http.Request) (reconsvc.RangeFilters, error) {
	filters := reconsvc.RangeFilters{}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return filters, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return filters, err
	}
	if !from.IsZero() {
		filters.From = from
	}
	if !to.IsZero() {
		filters.To = to.Add(24*time.Hour - time.Nanosecond)
	}

	createdBy, err := validators.ParseQueryUUID(r, "created_by")
	if err != nil {
		return filters, err
	}
	filters.CreatedBy = createdBy

	if raw := strings.TrimSpace(r.URL.Query().Get("warehouse")); raw != "" {
		warehouse, err := enums.ParseWarehouse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse")
		}
		filters.Warehouse = &warehouse
	}

	return filters, nil
}
