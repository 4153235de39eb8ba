package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
)

const (
	TokenTypeBearer = "bearer"

	verificationTokenBytes = 32 // 43 base64url characters
)

type TokenConfig struct {
	Secret          []byte
	Algorithm       string
	AccessTTL       time.Duration
	VerificationTTL time.Duration
}

// AccessClaims is the signed access-token payload: {user_id, exp}.
type AccessClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// VerificationToken is a freshly minted email-verification code. Token goes to
// the user; only Digest is persisted.
type VerificationToken struct {
	Token     string
	Digest    string
	ExpiresAt time.Time
}

type TokenService struct {
	cfg    TokenConfig
	method jwt.SigningMethod
	clock  clockwork.Clock
}

func NewTokenService(cfg TokenConfig, clock clockwork.Clock) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 || cfg.VerificationTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{cfg: cfg, method: method, clock: clock}, nil
}

// IssueAccessToken signs an access token with the configured lifetime.
func (s *TokenService) IssueAccessToken(userID int64) (string, time.Time, error) {
	return s.Issue(userID, s.cfg.AccessTTL)
}

func (s *TokenService) Issue(userID int64, ttl time.Duration) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, oops.Code("TOKEN_ISSUE_FAILED").Errorf("invalid user id %d", userID)
	}
	if ttl <= 0 {
		return "", time.Time{}, oops.Code("TOKEN_ISSUE_FAILED").Errorf("token lifetime must be positive")
	}

	now := s.clock.Now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(s.method, AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: expiresAt,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}
	return tokenString, expiresAt.Time, nil
}

// Resolve verifies signature, algorithm and expiry and returns the user id.
// Every failure collapses to ErrInvalidAccessToken.
func (s *TokenService) Resolve(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrInvalidAccessToken
	}

	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidAccessToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidAccessToken
	}
	return claims.UserID, nil
}

// IssueVerification mints a random single-use verification code.
func (s *TokenService) IssueVerification() (VerificationToken, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return VerificationToken{}, oops.Code("VERIFICATION_TOKEN_FAILED").Wrap(err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return VerificationToken{
		Token:     token,
		Digest:    DigestVerificationToken(token),
		ExpiresAt: s.clock.Now().Add(s.cfg.VerificationTTL),
	}, nil
}

// DigestVerificationToken is the stored form of a verification token.
func DigestVerificationToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
