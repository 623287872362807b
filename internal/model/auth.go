package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims are the JWT claims issued by the auth provider for form owners
type OwnerClaims struct {
	OwnerID string `json:"ownerId"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
