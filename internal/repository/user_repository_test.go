package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/domain"
)

var userColumnNames = []string{
	"id", "email", "name", "password_hash", "permissions",
	"reset_token", "reset_token_expiry", "created_at", "updated_at",
}

func userRow(id, email string, token *string, expiry *time.Time) []any {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []any{id, email, "Wes", "$2a$hash", []string{"USER"}, token, expiry, ts, ts}
}

func newMockRepo(t *testing.T) (UserStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantID    string
	}{
		{
			name: "inserts and fills generated fields",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				now := time.Now()
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("a@example.com", "Wes", "$2a$hash", []string{"USER"}).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))
			},
			wantID: "u-1",
		},
		{
			name: "unique violation maps to duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("a@example.com", "Wes", "$2a$hash", []string{"USER"}).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setupMock(mock)

			user := &domain.User{
				Email:        "a@example.com",
				Name:         "Wes",
				PasswordHash: "$2a$hash",
				Permissions:  domain.DefaultPermissions(),
			}
			err := repo.Create(context.Background(), user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_OtherErrorPassesThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@example.com", "", "", []string{}).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), &domain.User{Email: "a@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM users WHERE email=\$1`).
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(userRow("u-1", "a@example.com", nil, nil)...))

	user, err := repo.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, []domain.Permission{domain.PermissionUser}, user.Permissions)
	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetTokenExpiry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByValidResetToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	token := "tok"
	expiry := now.Add(time.Hour)
	mock.ExpectQuery(`reset_token=\$1 AND reset_token_expiry > \$2`).
		WithArgs("tok", now).
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(userRow("u-1", "a@example.com", &token, &expiry)...))

	user, err := repo.GetByValidResetToken(context.Background(), "tok", now)
	require.NoError(t, err)
	require.NotNil(t, user.ResetToken)
	assert.Equal(t, "tok", *user.ResetToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	now := time.Now()
	hash := "$2a$new"

	t.Run("guarded consume succeeds", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		guardToken := "tok"
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs("u-1", &hash, true, (*string)(nil), (*time.Time)(nil), &guardToken, &now).
			WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(userRow("u-1", "a@example.com", nil, nil)...))

		user, err := repo.Update(context.Background(), "u-1",
			UserPatch{PasswordHash: &hash, ClearResetToken: true},
			&ResetGuard{Token: "tok", ValidAt: now})
		require.NoError(t, err)
		assert.Nil(t, user.ResetToken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard miss reports guard failure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		guardToken := "tok"
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs("u-1", &hash, true, (*string)(nil), (*time.Time)(nil), &guardToken, &now).
			WillReturnRows(pgxmock.NewRows(userColumnNames))

		_, err := repo.Update(context.Background(), "u-1",
			UserPatch{PasswordHash: &hash, ClearResetToken: true},
			&ResetGuard{Token: "tok", ValidAt: now})
		assert.ErrorIs(t, err, ErrGuardFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unguarded miss reports not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs("u-1", &hash, false, (*string)(nil), (*time.Time)(nil), (*string)(nil), (*time.Time)(nil)).
			WillReturnRows(pgxmock.NewRows(userColumnNames))

		_, err := repo.Update(context.Background(), "u-1", UserPatch{PasswordHash: &hash}, nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("half reset pair is rejected before touching the db", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		token := "tok"

		_, err := repo.Update(context.Background(), "u-1", UserPatch{ResetToken: &token}, nil)
		assert.ErrorIs(t, err, ErrInvalidPatch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE users SET reset_token=NULL`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.ClearExpiredResetTokens(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
