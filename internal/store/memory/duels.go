package memory

import (
	"context"
	"sort"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/duel"
)

type DuelRepository struct {
	s *Store
}

var _ duel.Repository = (*DuelRepository)(nil)

func (r *DuelRepository) Create(_ context.Context, d *db.Duel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[d.CreatorID]; !ok {
		return auth.ErrUserNotFound
	}
	r.s.nextDuelID++
	d.ID = r.s.nextDuelID
	d.CreatedAt = r.s.now()
	d.JoinID = nil
	d.WinnerID = nil

	r.s.duels[d.ID] = copyDuel(d)
	return nil
}

func (r *DuelRepository) Get(_ context.Context, id int64) (*db.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.duels[id]
	if !ok {
		return nil, duel.ErrDuelNotFound
	}
	return copyDuel(d), nil
}

// List returns duels in id order.
func (r *DuelRepository) List(_ context.Context) ([]db.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	duels := make([]db.Duel, 0, len(r.s.duels))
	for _, d := range r.s.duels {
		duels = append(duels, *copyDuel(d))
	}
	sort.Slice(duels, func(i, j int) bool { return duels[i].ID < duels[j].ID })
	return duels, nil
}

func (r *DuelRepository) SetJoiner(_ context.Context, id, userID int64) (*db.Duel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.duels[id]
	if !ok {
		return nil, duel.ErrDuelNotFound
	}
	if d.JoinID != nil {
		return nil, duel.ErrDuelFull
	}
	if d.IsParticipant(userID) {
		return nil, duel.ErrSelfJoin
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, auth.ErrUserNotFound
	}
	joiner := userID
	d.JoinID = &joiner
	return copyDuel(d), nil
}

func (r *DuelRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.duels[id]; !ok {
		return duel.ErrDuelNotFound
	}
	delete(r.s.duels, id)
	return nil
}
