package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const (
	// ResetTokenBytes is the entropy of a reset token; hex encoding doubles the length.
	ResetTokenBytes = 20
	// DefaultResetWindow is how long a reset token stays valid.
	DefaultResetWindow = time.Hour
)

// entropy feeds reset tokens. Tests swap it to simulate a failing source.
var entropy io.Reader = rand.Reader

// GenerateResetToken returns a random hex token of fixed length.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return "", apperrors.NewTokenGenerationError(err)
	}
	return hex.EncodeToString(buf), nil
}

// ResetRequest is the outcome of a successful reset request, handed to notifiers.
type ResetRequest struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// ResetTokenManager issues, persists and consumes password reset tokens.
type ResetTokenManager struct {
	users  repository.UserRepository
	hasher PasswordHasher
	window time.Duration
	now    Clock
}

// NewResetTokenManager builds a manager. A nil clock means time.Now.
func NewResetTokenManager(users repository.UserRepository, hasher PasswordHasher, window time.Duration, clock Clock) *ResetTokenManager {
	if window <= 0 {
		window = DefaultResetWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &ResetTokenManager{users: users, hasher: hasher, window: window, now: clock}
}

// RequestReset stores a fresh token on the user identified by email.
func (m *ResetTokenManager) RequestReset(ctx context.Context, email string) (*ResetRequest, error) {
	email = domain.NormalizeEmail(email)
	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUserNotFound(email)
		}
		return nil, err
	}

	token, err := GenerateResetToken()
	if err != nil {
		return nil, err
	}
	expiresAt := m.now().Add(m.window)

	if _, err := m.users.Update(ctx, user.ID, repository.UserPatch{
		ResetToken:       &token,
		ResetTokenExpiry: &expiresAt,
	}, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUserNotFound(email)
		}
		return nil, err
	}

	return &ResetRequest{UserID: user.ID, Email: user.Email, Token: token, ExpiresAt: expiresAt}, nil
}

// ConfirmReset consumes token and sets the new password. Only one caller can
// consume a given token; others get an invalid-or-expired error.
func (m *ResetTokenManager) ConfirmReset(ctx context.Context, token, newPlaintext string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.NewInvalidOrExpiredToken()
	}

	user, err := m.users.GetByValidResetToken(ctx, token, m.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidOrExpiredToken()
		}
		return nil, err
	}

	hash, err := m.hasher.Hash(newPlaintext)
	if err != nil {
		return nil, err
	}

	// Re-read the clock: hashing is slow and the token may have lapsed meanwhile.
	updated, err := m.users.Update(ctx, user.ID, repository.UserPatch{
		PasswordHash:    &hash,
		ClearResetToken: true,
	}, &repository.ResetGuard{Token: token, ValidAt: m.now()})
	if err != nil {
		if errors.Is(err, repository.ErrGuardFailed) || errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidOrExpiredToken()
		}
		return nil, err
	}
	return updated, nil
}
