package dto

import "github.com/civicsense/portal-gateway/internal/models"

// LoginRequest holds credentials for authenticating against the backend.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a citizen account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse returns the gateway-issued token and the user profile.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	User      models.Profile `json:"user"`
}
