package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
)

const userColumns = `id, email, password_hash, is_verified, verification_token, verification_expire, created_at`

type UserRepository struct {
	db *sql.DB
}

var _ auth.UserRepository = (*UserRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*db.User, error) {
	var (
		u      db.User
		token  sql.NullString
		expire sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsVerified, &token, &expire, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.VerificationToken = nullableString(token)
	u.VerificationExpire = nullableTime(expire)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, is_verified, verification_token, verification_expire)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.IsVerified, u.VerificationToken, u.VerificationExpire).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateEmail
		}
		return wrap("USER_CREATE_FAILED", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, code, where string, arg any) (*db.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, wrap(code, err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*db.User, error) {
	return r.getOne(ctx, "USER_GET_FAILED", `id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	return r.getOne(ctx, "USER_GET_FAILED", `email = $1`, email)
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, digest string) (*db.User, error) {
	return r.getOne(ctx, "USER_GET_FAILED", `verification_token = $1`, digest)
}

func (r *UserRepository) MarkVerified(ctx context.Context, id int64, digest string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL, verification_expire = NULL
		WHERE id = $1 AND verification_token = $2
	`, id, digest)
	if err != nil {
		return wrap("USER_VERIFY_FAILED", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("USER_VERIFY_FAILED", err)
	}
	if n == 0 {
		return auth.ErrInvalidVerificationToken
	}
	return nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error {
	var verified bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET verification_token = CASE WHEN is_verified THEN verification_token ELSE $2 END,
		    verification_expire = CASE WHEN is_verified THEN verification_expire ELSE $3 END
		WHERE id = $1
		RETURNING is_verified
	`, id, digest, expiresAt).Scan(&verified)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrUserNotFound
	}
	if err != nil {
		return wrap("USER_SET_TOKEN_FAILED", err)
	}
	if verified {
		return auth.ErrAlreadyVerified
	}
	return nil
}
