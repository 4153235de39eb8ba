package duel_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/duel"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
)

// headerAuth trusts X-User-Id; the real gate is covered in the auth package.
func headerAuth(f *fixture) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(r.Header.Get("X-User-Id"), 10, 64)
			if err != nil {
				httputil.WriteError(w, r, auth.ErrUnauthorized)
				return
			}
			u, err := f.store.Users().GetByID(r.Context(), id)
			if err != nil {
				httputil.WriteError(w, r, auth.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}

func call(t *testing.T, h http.Handler, method, path string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		req.Header.Set("X-User-Id", strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDuelEndpoints(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@x.com")
	b := f.user(t, "b@x.com")

	r := chi.NewRouter()
	r.Mount("/duels", duel.NewHandler(f.service).Routes(headerAuth(f)))

	rec := call(t, r, http.MethodPost, "/duels", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, r, http.MethodPost, "/duels", a.ID)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created duel.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "open", string(created.State))
	path := "/duels/" + strconv.FormatInt(created.ID, 10)

	rec = call(t, r, http.MethodGet, "/duels", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []duel.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)

	rec = call(t, r, http.MethodPut, path+"/join", a.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, r, http.MethodPut, path+"/join", b.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var joined duel.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&joined))
	require.NotNil(t, joined.JoinID)
	assert.Equal(t, b.ID, *joined.JoinID)

	rec = call(t, r, http.MethodPut, path+"/join", b.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "DUEL_FULL", body.Code)

	rec = call(t, r, http.MethodDelete, path, b.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, r, http.MethodDelete, path, a.ID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, r, http.MethodGet, path, 0)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, r, http.MethodGet, "/duels/abc", 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
