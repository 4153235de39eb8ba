package memory

import (
	"context"
	"sort"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/leaderboard"
	"github.com/krishanu7/geoduel-backend/internal/stats"
)

type StatisticsRepository struct {
	s *Store
}

var _ stats.Repository = (*StatisticsRepository)(nil)

func (r *StatisticsRepository) Get(_ context.Context, userID int64) (*db.Statistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, err := r.s.statisticsFor(userID)
	if err != nil {
		return nil, err
	}
	c := *st
	return &c, nil
}

func (r *StatisticsRepository) RecordGame(_ context.Context, userID int64, won bool) (*db.Statistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, err := r.s.statisticsFor(userID)
	if err != nil {
		return nil, err
	}
	st.Games++
	if won {
		st.GamesWon++
	}
	c := *st
	return &c, nil
}

func (r *StatisticsRepository) RecordDuel(_ context.Context, userID int64, won bool) (*db.Statistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, err := r.s.statisticsFor(userID)
	if err != nil {
		return nil, err
	}
	st.Duels++
	if won {
		st.DuelsWon++
	}
	c := *st
	return &c, nil
}

// statisticsFor returns the live row, creating it zeroed on first access.
// Callers hold s.mu.
func (s *Store) statisticsFor(userID int64) (*db.Statistics, error) {
	if _, ok := s.users[userID]; !ok {
		return nil, auth.ErrUserNotFound
	}
	st, ok := s.statistics[userID]
	if !ok {
		st = &db.Statistics{UserID: userID}
		s.statistics[userID] = st
	}
	return st, nil
}

type LeaderboardRepository struct {
	s *Store
}

var _ leaderboard.Repository = (*LeaderboardRepository)(nil)

func (r *LeaderboardRepository) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries := make([]leaderboard.Entry, 0, len(r.s.statistics))
	for id, st := range r.s.statistics {
		if _, ok := r.s.users[id]; !ok {
			continue
		}
		entries = append(entries, leaderboard.Entry{
			UserID:   id,
			Games:    st.Games,
			GamesWon: st.GamesWon,
			Duels:    st.Duels,
			DuelsWon: st.DuelsWon,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.DuelsWon != b.DuelsWon {
			return a.DuelsWon > b.DuelsWon
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.UserID < b.UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
