package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, email, name, password_hash, permissions, reset_token, reset_token_expiry, created_at, updated_at`

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserStore {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, name, password_hash, permissions)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		permissionStrings(user.Permissions),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByValidResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users WHERE reset_token=$1 AND reset_token_expiry > $2
        LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, token, now))
}

func (r *userRepository) Update(ctx context.Context, id string, patch UserPatch, guard *ResetGuard) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	// The guard is evaluated by the same statement that writes, so two
	// concurrent consumers of one reset token cannot both match.
	const query = `
        UPDATE users SET
            password_hash = COALESCE($2, password_hash),
            reset_token = CASE WHEN $3::boolean THEN NULL ELSE COALESCE($4, reset_token) END,
            reset_token_expiry = CASE WHEN $3::boolean THEN NULL ELSE COALESCE($5, reset_token_expiry) END,
            updated_at = NOW()
        WHERE id=$1
          AND ($6::text IS NULL OR (reset_token = $6 AND reset_token_expiry > $7))
        RETURNING ` + userColumns

	var guardToken *string
	var guardAt *time.Time
	if guard != nil {
		guardToken = &guard.Token
		guardAt = &guard.ValidAt
	}

	user, err := scanUser(r.db.QueryRow(ctx, query,
		id,
		patch.PasswordHash,
		patch.ClearResetToken,
		patch.ResetToken,
		patch.ResetTokenExpiry,
		guardToken,
		guardAt,
	))
	if errors.Is(err, ErrNotFound) && guard != nil {
		return nil, ErrGuardFailed
	}
	return user, err
}

// ClearExpiredResetTokens nulls both reset fields on rows whose token lapsed.
func (r *userRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `
        UPDATE users SET reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW()
        WHERE reset_token IS NOT NULL AND reset_token_expiry <= $1`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user        domain.User
		permissions []string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&permissions,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.Permissions = make([]domain.Permission, 0, len(permissions))
	for _, p := range permissions {
		user.Permissions = append(user.Permissions, domain.Permission(p))
	}
	return &user, nil
}

func permissionStrings(perms []domain.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
