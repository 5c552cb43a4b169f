package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/api/middleware"
	"github.com/bedtex/dispatch-backend/api/responses"
	"github.com/bedtex/dispatch-backend/api/validators"
	vehiclesvc "github.com/bedtex/dispatch-backend/internal/vehicles"
	"github.com/bedtex/dispatch-backend/pkg/auth"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
	"github.com/bedtex/dispatch-backend/pkg/logger"
)

// CreateVehicle registers a vehicle for a dispatch day.
func CreateVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// UpdateVehicle mutates vehicle header fields.
func UpdateVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		vehicleID, err := validators.ParsePathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Update(r.Context(), actor, vehicleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// DeleteVehicle removes a vehicle no orders reference.
func DeleteVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		vehicleID, err := validators.ParsePathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetVehicle returns a single vehicle.
func GetVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID, err := validators.ParsePathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// ListVehicles filters vehicles by date range, destination, and completion.
func ListVehicles(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListVehiclesQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicles, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicles)
	}
}

// SetVehiclePrinted toggles the manifest-printed flag.
func SetVehiclePrinted(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return vehicleFlagHandler(logg, func(r *http.Request, vehicleID vehicleFlagTarget) (any, error) {
		return svc.SetPrinted(r.Context(), vehicleID.actor, vehicleID.id, vehicleID.value)
	})
}

// SetVehicleCompleted toggles the departure flag.
func SetVehicleCompleted(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return vehicleFlagHandler(logg, func(r *http.Request, vehicleID vehicleFlagTarget) (any, error) {
		return svc.SetCompleted(r.Context(), vehicleID.actor, vehicleID.id, vehicleID.value)
	})
}

type createVehicleRequest struct {
	Class       string  `json:"class" validate:"required"`
	TimeSlot    string  `json:"time_slot,omitempty"`
	Destination string  `json:"destination" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Note        *string `json:"note,omitempty"`
}

type updateVehicleRequest struct {
	Class       *string `json:"class,omitempty"`
	TimeSlot    *string `json:"time_slot,omitempty"`
	Destination *string `json:"destination,omitempty"`
	Date        *string `json:"date,omitempty"`
	Note        *string `json:"note,omitempty"`
}

type vehicleFlagRequest struct {
	Value bool `json:"value"`
}

func (r createVehicleRequest) toInput() (vehiclesvc.CreateVehicleInput, error) {
	class, err := enums.ParseVehicleClass(strings.TrimSpace(r.Class))
	if err != nil {
		return vehiclesvc.CreateVehicleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle class")
	}
	date, err := time.Parse(validators.DateLayout, r.Date)
	if err != nil {
		return vehiclesvc.CreateVehicleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be a yyyy-mm-dd date")
	}
	return vehiclesvc.CreateVehicleInput{
		Class:       class,
		TimeSlot:    r.TimeSlot,
		Destination: r.Destination,
		Date:        date,
		Note:        r.Note,
	}, nil
}

func (r updateVehicleRequest) toInput() (vehiclesvc.UpdateVehicleInput, error) {
	input := vehiclesvc.UpdateVehicleInput{
		TimeSlot:    r.TimeSlot,
		Destination: r.Destination,
		Note:        r.Note,
	}
	if r.Class != nil {
		class, err := enums.ParseVehicleClass(strings.TrimSpace(*r.Class))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle class")
		}
		input.Class = &class
	}
	if r.Date != nil {
		date, err := time.Parse(validators.DateLayout, *r.Date)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be a yyyy-mm-dd date")
		}
		input.Date = &date
	}
	return input, nil
}

type vehicleFlagTarget struct {
	actor auth.Actor
	id    uuid.UUID
	value bool
}

func vehicleFlagHandler(logg *logger.Logger, apply func(*http.Request, vehicleFlagTarget) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		vehicleID, err := validators.ParsePathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vehicleFlagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := apply(r, vehicleFlagTarget{actor: actor, id: vehicleID, value: payload.Value})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

func parseListVehiclesQuery(r *http.Request) (vehiclesvc.ListFilters, error) {
	filters := vehiclesvc.ListFilters{}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return filters, err
	}
	if !from.IsZero() {
		filters.From = &from
	}

	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return filters, err
	}
	if !to.IsZero() {
		end := to.Add(24*time.Hour - time.Nanosecond)
		filters.To = &end
	}

	filters.Destination = strings.TrimSpace(r.URL.Query().Get("destination"))

	if raw := strings.TrimSpace(r.URL.Query().Get("completed")); raw != "" {
		switch raw {
		case "true":
			v := true
			filters.Completed = &v
		case "false":
			v := false
			filters.Completed = &v
		default:
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be true or false").WithDetails(map[string]any{"field": "completed"})
		}
	}

	return filters, nil
}
