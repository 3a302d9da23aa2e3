package dto

import (
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SigninRequest payload for signin.
type SigninRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ResetRequest payload for POST /auth/password/reset/request.
type ResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetConfirmRequest payload for POST /auth/password/reset/confirm.
type ResetConfirmRequest struct {
	ResetToken      string `json:"resetToken" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// MessageResponse wraps the plain confirmations returned by signout and reset request.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user. Secrets never leave the service.
type UserResponse struct {
	ID          string              `json:"id"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Permissions []domain.Permission `json:"permissions"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// NewUserResponse builds the public view.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Permissions: u.Permissions,
		CreatedAt:   u.CreatedAt,
	}
}
