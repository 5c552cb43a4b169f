package auth

import (
	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/pkg/enums"
)

// Actor is the authenticated staff member performing a request. Warehouse is
// nil for every role except warehouse staff.
type Actor struct {
	UserID    uuid.UUID
	Name      string
	Role      enums.StaffRole
	Warehouse *enums.Warehouse
}

// ActorFromClaims projects validated token claims into the service-facing actor.
func ActorFromClaims(claims *AccessTokenClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		UserID:    claims.UserID,
		Name:      claims.Name,
		Role:      claims.Role,
		Warehouse: claims.Warehouse,
	}
}

// CanConfirmWarehouse reports whether the actor may set the warehouse
// confirmation for an item stored in the given warehouse. Warehouse staff are
// scoped to their own warehouse; every other role may confirm any item.
func (a Actor) CanConfirmWarehouse(warehouse enums.Warehouse) bool {
	if a.Role != enums.StaffRoleWarehouse {
		return true
	}
	return a.Warehouse != nil && *a.Warehouse == warehouse
}
