package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/domain"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&SigninRequest{Email: "a@example.com", Password: "pw"}))

	err := Validate(&ResetConfirmRequest{Password: "pw"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, "required", details["resetToken"])
	assert.Equal(t, "required", details["confirmPassword"])
	assert.NotContains(t, details, "password")
}

func TestNewUserResponse_OmitsSecrets(t *testing.T) {
	resp := NewUserResponse(testUser())
	assert.Equal(t, "u-1", resp.ID)
	assert.Equal(t, "a@example.com", resp.Email)
}

func testUser() *domain.User {
	token := "secret-reset"
	return &domain.User{ID: "u-1", Email: "a@example.com", PasswordHash: "hash", ResetToken: &token}
}
