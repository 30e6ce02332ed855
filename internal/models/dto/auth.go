package dto

import "github.com/hongminglow/tenantauth/internal/models"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"bcryptsafe=8"`
	Role     string `json:"role" validate:"omitempty,max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	User  models.User   `json:"user"`
	Token string        `json:"token"`
	Roles []models.Role `json:"roles"`
}
