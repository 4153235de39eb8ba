package auth

import (
	"context"
	"time"

	"github.com/krishanu7/geoduel-backend/db"
)

// UserRepository persists identity records. Implementations return
// ErrUserNotFound for missing rows and ErrDuplicateEmail on email conflicts.
type UserRepository interface {
	// Create inserts u and assigns u.ID and u.CreatedAt.
	Create(ctx context.Context, u *db.User) error
	GetByID(ctx context.Context, id int64) (*db.User, error)
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByVerificationToken(ctx context.Context, digest string) (*db.User, error)

	// MarkVerified verifies the user and clears both token fields, but only if
	// the stored digest still equals digest. Otherwise it returns
	// ErrInvalidVerificationToken.
	MarkVerified(ctx context.Context, id int64, digest string) error

	// SetVerificationToken replaces the pending token of an unverified user.
	// It returns ErrAlreadyVerified if the user is verified.
	SetVerificationToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error
}

// VerificationEmail is emitted after a verification token has been committed.
type VerificationEmail struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationSender hands a verification email to the delivery pipeline.
// It must not block on mail delivery.
type VerificationSender interface {
	SendVerification(ctx context.Context, msg VerificationEmail) error
}
