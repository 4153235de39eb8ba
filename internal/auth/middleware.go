package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
)

type ctxKey string

const ctxKeyUser ctxKey = "auth_user"

type TokenResolver interface {
	Resolve(token string) (int64, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
}

// Gate resolves a request's bearer token to a user.
type Gate struct {
	tokens TokenResolver
	users  UserLookup
}

func NewGate(tokens TokenResolver, users UserLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// Authorize returns ErrUnauthorized for a missing or malformed header, an
// invalid token, or a token whose user no longer exists.
func (g *Gate) Authorize(r *http.Request) (*db.User, error) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, ErrUnauthorized
	}
	userID, err := g.tokens.Resolve(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := g.users.GetByID(r.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, oops.Code("AUTHORIZE_FAILED").Wrap(err)
	}
	return user, nil
}

// Authenticator rejects requests the gate cannot authorize and stores the
// resolved user in the request context.
func Authenticator(g *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Authorize(r)
			if err != nil {
				httputil.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, u *db.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

func UserFromContext(ctx context.Context) (*db.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(*db.User)
	return u, ok && u != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
