// Package leaderboard ranks users by their recorded statistics.
package leaderboard

import (
	"context"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Entry is one leaderboard row. Ranking is by duels won, then games won,
// then user id ascending. The board is public, so users appear by id only.
type Entry struct {
	Rank     int   `json:"rank"`
	UserID   int64 `json:"user_id"`
	Games    int   `json:"games"`
	GamesWon int   `json:"games_won"`
	Duels    int   `json:"duels"`
	DuelsWon int   `json:"duels_won"`
}

// Repository returns at most limit entries already in rank order. Users
// without a statistics row are not listed.
type Repository interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ClampLimit maps a requested page size into [1, MaxLimit]; zero or negative
// means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := s.repo.Top(ctx, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
