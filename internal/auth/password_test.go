package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/krishanu7/geoduel-backend/internal/auth"
)

func TestBcryptHash(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	t.Run("produces bcrypt hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
		assert.NotContains(t, hash, "password123")
	})

	t.Run("same password produces different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify("samepassword", hash1))
		assert.True(t, hasher.Verify("samepassword", hash2))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrPasswordRequired)
	})

	t.Run("rejects passwords bcrypt would truncate", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
	})

	t.Run("out of range cost falls back to default", func(t *testing.T) {
		hash, err := auth.NewBcryptHasher(1).Hash("pw")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}

func TestBcryptVerify(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "correctpassword", hash, true},
		{"wrong password", "wrongpassword", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "correctpassword", "", false},
		{"malformed hash", "correctpassword", "not-a-hash", false},
		{"truncated hash", "correctpassword", hash[:20], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Verify(tt.password, tt.hash))
		})
	}
}

func TestHashRoundTripAcrossPasswords(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	passwords := []string{"pw1", "pw2", "hunter2", "ünïcødé", "with space", strings.Repeat("x", 72)}

	for i, p := range passwords {
		hash, err := hasher.Hash(p)
		require.NoError(t, err)
		for j, other := range passwords {
			assert.Equal(t, i == j, hasher.Verify(other, hash), "verify(%q, hash(%q))", other, p)
		}
	}
}
