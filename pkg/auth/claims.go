package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bedtex/dispatch-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Name      string
	Role      enums.StaffRole
	Warehouse *enums.Warehouse
}

// AccessTokenClaims represents the typed JWT presented by clients. Warehouse
// is only set for warehouse staff and scopes which items they may confirm.
type AccessTokenClaims struct {
	UserID    uuid.UUID        `json:"user_id"`
	Name      string           `json:"name"`
	Role      enums.StaffRole  `json:"role"`
	Warehouse *enums.Warehouse `json:"warehouse,omitempty"`
	jwt.RegisteredClaims
}
