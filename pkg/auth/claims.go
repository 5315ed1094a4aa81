package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// AccessTokenPayload is what MintAccessToken needs to issue a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Email  string
	Name   string
	JTI    string
}

// AccessTokenClaims mirrors the identity provider's token. Email and name are
// profile hints used to seed the local user row on first sight.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role,omitempty"`
	Email  string         `json:"email,omitempty"`
	Name   string         `json:"name,omitempty"`
	jwt.RegisteredClaims
}
