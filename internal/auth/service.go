package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/oops"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/metrics"
)

const maxEmailLength = 254

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service is the identity registry.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenService
	sender VerificationSender
	clock  clockwork.Clock

	// dummyHash keeps unknown-email logins as slow as wrong-password logins.
	dummyHash string
}

func NewService(users UserRepository, hasher PasswordHasher, tokens *TokenService, sender VerificationSender, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	dummy, err := hasher.Hash("geoduel-timing-equalizer")
	if err != nil {
		log.Warnf("Could not prepare dummy password hash: %v", err)
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		sender:    sender,
		clock:     clock,
		dummyHash: dummy,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*db.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	vt, err := s.tokens.IssueVerification()
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Email:              email,
		PasswordHash:       hashed,
		IsVerified:         false,
		VerificationToken:  &vt.Digest,
		VerificationExpire: &vt.ExpiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.Registrations.Inc()
	log.Infof("Registered user %d", user.ID)

	s.sendVerification(ctx, user, vt)
	return user, nil
}

// Authenticate fails with ErrInvalidCredentials for both unknown emails and
// wrong passwords.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		metrics.Logins.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, oops.Code("AUTHENTICATE_FAILED").Wrap(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.Logins.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}

	token, expiresAt, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	log.Infof("User %d logged in", user.ID)
	return LoginResult{AccessToken: token, TokenType: TokenTypeBearer, ExpiresAt: expiresAt}, nil
}

// VerifyEmail consumes a verification token. Expired tokens are left in place.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidVerificationToken
	}
	digest := DigestVerificationToken(token)

	user, err := s.users.GetByVerificationToken(ctx, digest)
	if errors.Is(err, ErrUserNotFound) {
		metrics.Verifications.WithLabelValues("invalid").Inc()
		return ErrInvalidVerificationToken
	}
	if err != nil {
		return oops.Code("VERIFY_EMAIL_FAILED").Wrap(err)
	}

	if !user.HasPendingVerification() || !s.clock.Now().Before(*user.VerificationExpire) {
		metrics.Verifications.WithLabelValues("expired").Inc()
		return ErrVerificationExpired
	}

	if err := s.users.MarkVerified(ctx, user.ID, digest); err != nil {
		if errors.Is(err, ErrInvalidVerificationToken) {
			metrics.Verifications.WithLabelValues("invalid").Inc()
		}
		return err
	}

	metrics.Verifications.WithLabelValues("success").Inc()
	log.Infof("User %d verified email", user.ID)
	return nil
}

// ResendVerification issues a new token for an unverified user, replacing any
// pending or expired one.
func (s *Service) ResendVerification(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	vt, err := s.tokens.IssueVerification()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, vt.Digest, vt.ExpiresAt); err != nil {
		return err
	}

	s.sendVerification(ctx, user, vt)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*db.User, error) {
	return s.users.GetByID(ctx, id)
}

// sendVerification runs after the token is committed. Failures are logged and
// swallowed: the user stays registered and can ask for a resend.
func (s *Service) sendVerification(ctx context.Context, user *db.User, vt VerificationToken) {
	if s.sender == nil {
		return
	}
	err := s.sender.SendVerification(ctx, VerificationEmail{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     vt.Token,
		ExpiresAt: vt.ExpiresAt,
	})
	if err != nil {
		metrics.VerificationEmails.WithLabelValues("enqueue_failed").Inc()
		log.Warnf("Verification email for user %d not queued: %v", user.ID, err)
		return
	}
	metrics.VerificationEmails.WithLabelValues("queued").Inc()
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}
