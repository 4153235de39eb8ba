package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu7/geoduel-backend/internal/auth"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTokenService(t *testing.T, clock clockwork.Clock) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(auth.TokenConfig{
		Secret:          []byte("test-secret"),
		Algorithm:       "HS256",
		AccessTTL:       time.Hour,
		VerificationTTL: 30 * time.Minute,
	}, clock)
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  auth.TokenConfig
	}{
		{"empty secret", auth.TokenConfig{Algorithm: "HS256", AccessTTL: time.Hour, VerificationTTL: time.Hour}},
		{"none algorithm", auth.TokenConfig{Secret: []byte("s"), Algorithm: "none", AccessTTL: time.Hour, VerificationTTL: time.Hour}},
		{"asymmetric algorithm", auth.TokenConfig{Secret: []byte("s"), Algorithm: "RS256", AccessTTL: time.Hour, VerificationTTL: time.Hour}},
		{"zero ttl", auth.TokenConfig{Secret: []byte("s"), Algorithm: "HS256", VerificationTTL: time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewTokenService(tt.cfg, clockwork.NewFakeClockAt(epoch))
			assert.Error(t, err)
		})
	}
}

func TestAccessTokenLifetime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	svc := newTokenService(t, clock)

	token, expiresAt, err := svc.Issue(42, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(10*time.Minute), expiresAt)

	userID, err := svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	clock.Advance(10*time.Minute - time.Second)
	userID, err = svc.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	// exp must be strictly in the future.
	clock.Advance(time.Second)
	_, err = svc.Resolve(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)

	clock.Advance(time.Hour)
	_, err = svc.Resolve(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestIssueAccessTokenUsesConfiguredTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	svc := newTokenService(t, clock)

	_, expiresAt, err := svc.IssueAccessToken(1)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), expiresAt)
}

func TestIssueRejectsBadInput(t *testing.T) {
	svc := newTokenService(t, clockwork.NewFakeClockAt(epoch))

	_, _, err := svc.Issue(0, time.Hour)
	assert.Error(t, err)
	_, _, err = svc.Issue(1, 0)
	assert.Error(t, err)
}

func TestResolveRejectsForeignTokens(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	svc := newTokenService(t, clock)
	exp := jwt.NewNumericDate(epoch.Add(time.Hour))

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	valid, _, err := svc.Issue(7, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other-secret"), auth.AccessClaims{
			UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
		})},
		{"other hmac algorithm", sign(jwt.SigningMethodHS512, []byte("test-secret"), auth.AccessClaims{
			UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
		})},
		{"unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, auth.AccessClaims{
			UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
		})},
		{"missing exp", sign(jwt.SigningMethodHS256, []byte("test-secret"), auth.AccessClaims{UserID: 7})},
		{"missing user id", sign(jwt.SigningMethodHS256, []byte("test-secret"), auth.AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
		})},
		{"tampered payload", parts[0] + "." + parts[1] + "x." + parts[2]},
		{"stripped signature", parts[0] + "." + parts[1] + "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := svc.Resolve(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
			assert.Zero(t, userID)
		})
	}
}

func TestResolveAcrossSecrets(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	a := newTokenService(t, clock)
	b, err := auth.NewTokenService(auth.TokenConfig{
		Secret:          []byte("another-secret"),
		Algorithm:       "HS256",
		AccessTTL:       time.Hour,
		VerificationTTL: time.Hour,
	}, clock)
	require.NoError(t, err)

	token, _, err := a.IssueAccessToken(5)
	require.NoError(t, err)

	_, err = b.Resolve(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestIssueVerification(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	svc := newTokenService(t, clock)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		vt, err := svc.IssueVerification()
		require.NoError(t, err)
		assert.Len(t, vt.Token, 43)
		assert.Len(t, vt.Digest, 64)
		assert.Equal(t, auth.DigestVerificationToken(vt.Token), vt.Digest)
		assert.NotEqual(t, vt.Token, vt.Digest)
		assert.Equal(t, epoch.Add(30*time.Minute), vt.ExpiresAt)
		assert.False(t, seen[vt.Token], "verification tokens must not repeat")
		seen[vt.Token] = true
	}
}
