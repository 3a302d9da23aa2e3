package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// MemoryUserRepository keeps users in process memory. It backs local
// development when no POSTGRES_DSN is set, and tests.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	now := r.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryUserRepository) GetByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byID {
		if user.ResetToken != nil && *user.ResetToken == token && user.HasPendingReset(now) {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Update(ctx context.Context, id string, patch UserPatch, guard *ResetGuard) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		if guard != nil {
			return nil, ErrGuardFailed
		}
		return nil, ErrNotFound
	}
	if guard != nil {
		if user.ResetToken == nil || *user.ResetToken != guard.Token || !user.HasPendingReset(guard.ValidAt) {
			return nil, ErrGuardFailed
		}
	}

	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	switch {
	case patch.ClearResetToken:
		user.ResetToken = nil
		user.ResetTokenExpiry = nil
	case patch.ResetToken != nil:
		token := *patch.ResetToken
		expiry := *patch.ResetTokenExpiry
		user.ResetToken = &token
		user.ResetTokenExpiry = &expiry
	}
	user.UpdatedAt = r.now()
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, user := range r.byID {
		if user.ResetToken != nil && !user.HasPendingReset(now) {
			user.ResetToken = nil
			user.ResetTokenExpiry = nil
			user.UpdatedAt = r.now()
			cleared++
		}
	}
	return cleared, nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Permissions = append([]domain.Permission(nil), u.Permissions...)
	if u.ResetToken != nil {
		token := *u.ResetToken
		c.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		c.ResetTokenExpiry = &expiry
	}
	return &c
}
