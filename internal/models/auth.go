package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload issued by the hosted auth provider.
// Subject carries the user id; Role is resolved from the users table after validation.
type JWTClaims struct {
	UserID string   `json:"-"`
	Role   UserRole `json:"-"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
