// Package stats is the statistics ledger: per-user game and duel counters.
// Counters only grow, and won never exceeds the total.
package stats

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/apperr"
	"github.com/krishanu7/geoduel-backend/internal/metrics"
)

// Repository implementations create the zeroed row on first use and apply
// each increment as a single atomic statement. An unknown user yields
// auth.ErrUserNotFound.
type Repository interface {
	Get(ctx context.Context, userID int64) (*db.Statistics, error)
	RecordGame(ctx context.Context, userID int64, won bool) (*db.Statistics, error)
	RecordDuel(ctx context.Context, userID int64, won bool) (*db.Statistics, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID int64) (*db.Statistics, error) {
	if userID <= 0 {
		return nil, apperr.Validation("invalid user id")
	}
	return s.repo.Get(ctx, userID)
}

func (s *Service) RecordGame(ctx context.Context, userID int64, won bool) (*db.Statistics, error) {
	if userID <= 0 {
		return nil, apperr.Validation("invalid user id")
	}
	st, err := s.repo.RecordGame(ctx, userID, won)
	if err != nil {
		return nil, err
	}
	metrics.Outcomes.WithLabelValues("game", metrics.Result(won)).Inc()
	log.Infof("Updated game stats for user %d (games=%d, won=%d)", userID, st.Games, st.GamesWon)
	return st, nil
}

func (s *Service) RecordDuel(ctx context.Context, userID int64, won bool) (*db.Statistics, error) {
	if userID <= 0 {
		return nil, apperr.Validation("invalid user id")
	}
	st, err := s.repo.RecordDuel(ctx, userID, won)
	if err != nil {
		return nil, err
	}
	metrics.Outcomes.WithLabelValues("duel", metrics.Result(won)).Inc()
	log.Infof("Updated duel stats for user %d (duels=%d, won=%d)", userID, st.Duels, st.DuelsWon)
	return st, nil
}
