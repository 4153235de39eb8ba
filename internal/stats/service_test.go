package stats_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/stats"
	"github.com/krishanu7/geoduel-backend/internal/store/memory"
)

func newUser(t *testing.T, s *memory.Store) *db.User {
	t.Helper()
	u := &db.User{Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestStatisticsStartAtZero(t *testing.T) {
	s := memory.New(nil)
	svc := stats.NewService(s.Statistics())
	u := newUser(t, s)

	st, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, db.Statistics{UserID: u.ID}, *st)
}

func TestRecordOutcomes(t *testing.T) {
	s := memory.New(nil)
	svc := stats.NewService(s.Statistics())
	ctx := context.Background()
	u := newUser(t, s)

	st, err := svc.RecordGame(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Games)
	assert.Equal(t, 1, st.GamesWon)

	st, err = svc.RecordGame(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Games)
	assert.Equal(t, 1, st.GamesWon)

	st, err = svc.RecordDuel(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Duels)
	assert.Equal(t, 0, st.DuelsWon)
	assert.Equal(t, 2, st.Games, "duel outcomes leave game counters alone")
}

func TestRecordUnknownUser(t *testing.T) {
	svc := stats.NewService(memory.New(nil).Statistics())

	_, err := svc.RecordGame(context.Background(), 42, true)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	_, err = svc.RecordDuel(context.Background(), 0, true)
	assert.Error(t, err)
}

func TestConcurrentRecordsAreNotLost(t *testing.T) {
	s := memory.New(nil)
	svc := stats.NewService(s.Statistics())
	ctx := context.Background()
	u := newUser(t, s)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(won bool) {
			defer wg.Done()
			_, err := svc.RecordGame(ctx, u.ID, won)
			assert.NoError(t, err)
		}(i%2 == 0)
		go func(won bool) {
			defer wg.Done()
			_, err := svc.RecordDuel(ctx, u.ID, won)
			assert.NoError(t, err)
		}(i%5 == 0)
	}
	wg.Wait()

	st, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, n, st.Games)
	assert.Equal(t, n/2, st.GamesWon)
	assert.Equal(t, n, st.Duels)
	assert.Equal(t, n/5, st.DuelsWon)
}

func TestStatisticsEndpoints(t *testing.T) {
	s := memory.New(nil)
	u := newUser(t, s)
	withUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
	r := chi.NewRouter()
	r.Mount("/statistics", stats.NewHandler(stats.NewService(s.Statistics())).Routes(withUser))

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		return rec
	}

	rec := post("/statistics/game", `{"won":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var game stats.GameOutcomeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&game))
	assert.Equal(t, "a@x.com", game.UserEmail)
	assert.Equal(t, 1, game.Games)
	assert.Equal(t, 1, game.GamesWon)

	rec = post("/statistics/duel", `{"won":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var duel stats.DuelOutcomeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&duel))
	assert.Equal(t, 1, duel.Duels)
	assert.Equal(t, 0, duel.DuelsWon)

	for _, body := range []string{``, `{}`, `{"won":"yes"}`, `{"won":true,"games":5}`} {
		rec = post("/statistics/game", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statistics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got stats.StatisticsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, stats.StatisticsResponse{Games: 1, GamesWon: 1, Duels: 1}, got)
}
