package auth

import (
	"github.com/angelmondragon/freightlink-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID           uuid.UUID
	OrganizationID   *uuid.UUID
	OrganizationType *enums.OrganizationType
	Role             enums.Role
	JTI              string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID           uuid.UUID               `json:"user_id"`
	OrganizationID   *uuid.UUID              `json:"organization_id,omitempty"`
	OrganizationType *enums.OrganizationType `json:"organization_type,omitempty"`
	Role             enums.Role              `json:"role"`
	jwt.RegisteredClaims
}
