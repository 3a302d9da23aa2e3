package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email unique constraint rejects a write.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrGuardFailed is returned when a conditional update finds the guarded fields changed.
	ErrGuardFailed = errors.New("conditional update guard failed")
	// ErrInvalidPatch is returned for patches that would break the reset-token pairing.
	ErrInvalidPatch = errors.New("invalid user patch")
)

// UserPatch lists the fields an update may touch. Nil pointers leave a field unchanged.
type UserPatch struct {
	PasswordHash     *string
	ResetToken       *string
	ResetTokenExpiry *time.Time
	// ClearResetToken nulls both reset fields together.
	ClearResetToken bool
}

// Validate enforces that reset token and expiry move together.
func (p UserPatch) Validate() error {
	if (p.ResetToken == nil) != (p.ResetTokenExpiry == nil) {
		return ErrInvalidPatch
	}
	if p.ClearResetToken && p.ResetToken != nil {
		return ErrInvalidPatch
	}
	return nil
}

// ResetGuard makes an update conditional on the stored reset token still
// equalling Token and being unexpired at ValidAt.
type ResetGuard struct {
	Token   string
	ValidAt time.Time
}

// UserRepository is the persistence contract consumed by the auth core.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	// Update applies patch to the user with id. With a non-nil guard the
	// write happens only if the guard still holds, otherwise ErrGuardFailed.
	Update(ctx context.Context, id string, patch UserPatch, guard *ResetGuard) (*domain.User, error)
}

// ExpiredResetCleaner clears reset token pairs whose expiry has passed.
type ExpiredResetCleaner interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// UserStore is a user repository that can also sweep lapsed reset tokens.
// Both the Postgres and in-memory stores satisfy it.
type UserStore interface {
	UserRepository
	ExpiredResetCleaner
}
