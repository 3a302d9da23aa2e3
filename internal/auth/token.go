package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/storefront-api/internal/domain"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// ErrMissingSecret is returned when a TokenManager is built without a signing secret.
var ErrMissingSecret = errors.New("session signing secret is required")

// Clock returns the current time.
type Clock func() time.Time

// TokenManager issues and verifies stateless HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

// NewTokenManager builds a manager. The secret must be non-empty and a nil
// clock means time.Now.
func NewTokenManager(secret string, ttl time.Duration, clock Clock) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: clock}, nil
}

// Claims describes the session JWT payload.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TTL returns how long issued tokens stay valid.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token binding userID.
func (tm *TokenManager) Issue(userID string) (*domain.Session, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, apperrors.NewSigningError(err)
	}
	return &domain.Session{Token: signed, UserID: userID, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify validates signature and expiry and returns the bound user id.
func (tm *TokenManager) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return "", apperrors.NewInvalidToken(err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", apperrors.NewInvalidToken(errors.New("invalid token claims"))
	}
	return claims.UserID, nil
}
