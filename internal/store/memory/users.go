package memory

import (
	"context"
	"time"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
)

type UserRepository struct {
	s *Store
}

var _ auth.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *db.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[u.Email]; taken {
		return auth.ErrDuplicateEmail
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	u.CreatedAt = r.s.now()

	r.s.users[u.ID] = copyUser(u)
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*db.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*db.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepository) GetByVerificationToken(_ context.Context, digest string) (*db.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.VerificationToken != nil && *u.VerificationToken == digest {
			return copyUser(u), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *UserRepository) MarkVerified(_ context.Context, id int64, digest string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.VerificationToken == nil || *u.VerificationToken != digest {
		return auth.ErrInvalidVerificationToken
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationExpire = nil
	return nil
}

func (r *UserRepository) SetVerificationToken(_ context.Context, id int64, digest string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if u.IsVerified {
		return auth.ErrAlreadyVerified
	}
	expire := expiresAt
	u.VerificationToken = &digest
	u.VerificationExpire = &expire
	return nil
}
