package auth

import (
	"net/http"

	"github.com/krishanu7/geoduel-backend/internal/apperr"
)

var (
	ErrInvalidEmail     = apperr.New(apperr.KindValidation, "INVALID_EMAIL", "a valid email address is required")
	ErrPasswordRequired = apperr.New(apperr.KindValidation, "PASSWORD_REQUIRED", "password cannot be empty")
	ErrPasswordTooLong  = apperr.New(apperr.KindValidation, "PASSWORD_TOO_LONG", "password must be at most 72 bytes")

	ErrDuplicateEmail  = apperr.New(apperr.KindConflict, "DUPLICATE_EMAIL", "email already registered")
	ErrAlreadyVerified = apperr.New(apperr.KindConflict, "ALREADY_VERIFIED", "email already verified")

	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "INVALID_CREDENTIALS", "invalid email or password")
	ErrUnauthorized       = apperr.New(apperr.KindAuth, "UNAUTHORIZED", "could not validate credentials")
	ErrInvalidAccessToken = apperr.New(apperr.KindAuth, "INVALID_TOKEN", "invalid or expired token")

	// Verification failures are auth errors that the API reports as 400.
	ErrInvalidVerificationToken = apperr.New(apperr.KindAuth, "INVALID_TOKEN", "invalid verification token").
					WithStatus(http.StatusBadRequest)
	ErrVerificationExpired = apperr.New(apperr.KindAuth, "TOKEN_EXPIRED", "verification token has expired").
				WithStatus(http.StatusBadRequest)

	ErrUserNotFound = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
)
