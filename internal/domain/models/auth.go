package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the JWT claims issued by the identity provider.
// The subject claim carries the user ID every operation is scoped by.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
