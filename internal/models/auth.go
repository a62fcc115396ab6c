package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the portal roles.
type UserRole string

const (
	RoleCitizen  UserRole = "CITIZEN"
	RoleOfficial UserRole = "OFFICIAL"
)

// Profile describes the authenticated user as reported by the backend.
type Profile struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// Session is the explicit session object backing every protected view: the
// backend-issued token plus the user profile, addressed by session id. It
// replaces ambient per-page token reads with one typed accessor.
type Session struct {
	ID           string    `json:"id"`
	BackendToken string    `json:"backend_token"`
	User         Profile   `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

// JWTClaims is the gateway-issued access token payload. It carries the
// session id, not the backend token.
type JWTClaims struct {
	SessionID string   `json:"session_id"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}
