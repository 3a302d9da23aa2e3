package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	t.Run("round trips", func(t *testing.T) {
		hash, err := hasher.Hash("pw1")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("pw1", hash))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("other password does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("pw1")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("pw2", hash))
	})

	t.Run("too long password is a validation error", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", 73))
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, hasher.Verify("pw", "not-a-hash"))
	assert.False(t, hasher.Verify("pw", ""))
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	assert.Equal(t, 12, NewBcryptHasher(12).Cost())
	assert.Equal(t, DefaultHashCost, NewBcryptHasher(0).Cost())
	assert.Equal(t, DefaultHashCost, NewBcryptHasher(99).Cost())
}
