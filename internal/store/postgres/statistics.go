package postgres

import (
	"context"
	"database/sql"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/leaderboard"
	"github.com/krishanu7/geoduel-backend/internal/stats"
)

const statisticsColumns = `user_id, games, games_won, duels, duels_won`

type StatisticsRepository struct {
	db *sql.DB
}

var _ stats.Repository = (*StatisticsRepository)(nil)

func scanStatistics(row rowScanner) (*db.Statistics, error) {
	var st db.Statistics
	if err := row.Scan(&st.UserID, &st.Games, &st.GamesWon, &st.Duels, &st.DuelsWon); err != nil {
		return nil, err
	}
	return &st, nil
}

// Get creates the zeroed row if it does not exist yet. The no-op update makes
// RETURNING yield the existing row on conflict.
func (r *StatisticsRepository) Get(ctx context.Context, userID int64) (*db.Statistics, error) {
	return r.upsert(ctx, "STATISTICS_GET_FAILED", `
		INSERT INTO statistics (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = statistics.user_id
		RETURNING `+statisticsColumns, userID)
}

func (r *StatisticsRepository) RecordGame(ctx context.Context, userID int64, won bool) (*db.Statistics, error) {
	return r.upsert(ctx, "STATISTICS_GAME_FAILED", `
		INSERT INTO statistics (user_id, games, games_won) VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET games = statistics.games + 1,
		    games_won = statistics.games_won + EXCLUDED.games_won
		RETURNING `+statisticsColumns, userID, winIncrement(won))
}

func (r *StatisticsRepository) RecordDuel(ctx context.Context, userID int64, won bool) (*db.Statistics, error) {
	return r.upsert(ctx, "STATISTICS_DUEL_FAILED", `
		INSERT INTO statistics (user_id, duels, duels_won) VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET duels = statistics.duels + 1,
		    duels_won = statistics.duels_won + EXCLUDED.duels_won
		RETURNING `+statisticsColumns, userID, winIncrement(won))
}

func (r *StatisticsRepository) upsert(ctx context.Context, code, query string, args ...any) (*db.Statistics, error) {
	st, err := scanStatistics(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, wrap(code, err)
	}
	return st, nil
}

func winIncrement(won bool) int {
	if won {
		return 1
	}
	return 0
}

type LeaderboardRepository struct {
	db *sql.DB
}

var _ leaderboard.Repository = (*LeaderboardRepository)(nil)

func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, games, games_won, duels, duels_won
		FROM statistics
		ORDER BY duels_won DESC, games_won DESC, user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrap("LEADERBOARD_QUERY_FAILED", err)
	}
	defer rows.Close()

	entries := []leaderboard.Entry{}
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.UserID, &e.Games, &e.GamesWon, &e.Duels, &e.DuelsWon); err != nil {
			return nil, wrap("LEADERBOARD_QUERY_FAILED", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("LEADERBOARD_QUERY_FAILED", err)
	}
	return entries, nil
}
