package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/duel"
)

const duelColumns = `id, creator_id, join_id, winner_id, created_at`

type DuelRepository struct {
	db *sql.DB
}

var _ duel.Repository = (*DuelRepository)(nil)

func scanDuel(row rowScanner) (*db.Duel, error) {
	var (
		d      db.Duel
		joinID sql.NullInt64
		winner sql.NullInt64
	)
	if err := row.Scan(&d.ID, &d.CreatorID, &joinID, &winner, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.JoinID = nullableInt64(joinID)
	d.WinnerID = nullableInt64(winner)
	return &d, nil
}

func (r *DuelRepository) Create(ctx context.Context, d *db.Duel) error {
	created, err := scanDuel(r.db.QueryRowContext(ctx, `
		INSERT INTO duels (creator_id) VALUES ($1)
		RETURNING `+duelColumns, d.CreatorID))
	if err != nil {
		if isForeignKeyViolation(err) {
			return auth.ErrUserNotFound
		}
		return wrap("DUEL_CREATE_FAILED", err)
	}
	*d = *created
	return nil
}

func (r *DuelRepository) Get(ctx context.Context, id int64) (*db.Duel, error) {
	d, err := scanDuel(r.db.QueryRowContext(ctx, `SELECT `+duelColumns+` FROM duels WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, duel.ErrDuelNotFound
	}
	if err != nil {
		return nil, wrap("DUEL_GET_FAILED", err)
	}
	return d, nil
}

func (r *DuelRepository) List(ctx context.Context) ([]db.Duel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+duelColumns+` FROM duels ORDER BY id`)
	if err != nil {
		return nil, wrap("DUEL_LIST_FAILED", err)
	}
	defer rows.Close()

	duels := []db.Duel{}
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, wrap("DUEL_LIST_FAILED", err)
		}
		duels = append(duels, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("DUEL_LIST_FAILED", err)
	}
	return duels, nil
}

// SetJoiner is a compare-and-set on join_id IS NULL. When no row matches, a
// second lookup tells a missing duel from a full one.
func (r *DuelRepository) SetJoiner(ctx context.Context, id, userID int64) (*db.Duel, error) {
	d, err := scanDuel(r.db.QueryRowContext(ctx, `
		UPDATE duels SET join_id = $2
		WHERE id = $1 AND join_id IS NULL
		RETURNING `+duelColumns, id, userID))
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, sql.ErrNoRows):
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, duel.ErrDuelFull
	case isForeignKeyViolation(err):
		return nil, auth.ErrUserNotFound
	case isCheckViolation(err):
		return nil, duel.ErrSelfJoin
	default:
		return nil, wrap("DUEL_JOIN_FAILED", err)
	}
}

func (r *DuelRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM duels WHERE id = $1`, id)
	if err != nil {
		return wrap("DUEL_DELETE_FAILED", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("DUEL_DELETE_FAILED", err)
	}
	if n == 0 {
		return duel.ErrDuelNotFound
	}
	return nil
}
