// Package memory is an in-process implementation of every repository. It
// mirrors the postgres constraints (unique email, foreign keys, cascades) and
// is used by tests and by the "memory" store driver.
package memory

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/krishanu7/geoduel-backend/db"
)

// Store holds all tables behind one mutex, so every repository call is atomic
// with respect to all others.
type Store struct {
	mu    sync.Mutex
	clock clockwork.Clock

	users      map[int64]*db.User
	emails     map[string]int64
	duels      map[int64]*db.Duel
	statistics map[int64]*db.Statistics

	nextUserID int64
	nextDuelID int64
}

func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:      clock,
		users:      make(map[int64]*db.User),
		emails:     make(map[string]int64),
		duels:      make(map[int64]*db.Duel),
		statistics: make(map[int64]*db.Statistics),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Duels() *DuelRepository { return &DuelRepository{s: s} }
func (s *Store) Statistics() *StatisticsRepository { return &StatisticsRepository{s: s} }
func (s *Store) Leaderboard() *LeaderboardRepository { return &LeaderboardRepository{s: s} }

// DeleteUser removes a user the way the schema's foreign keys would: their
// statistics and created duels go, duels they joined or won keep a NULL.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.emails, u.Email)
	delete(s.users, id)
	delete(s.statistics, id)
	for duelID, d := range s.duels {
		if d.CreatorID == id {
			delete(s.duels, duelID)
			continue
		}
		if d.JoinID != nil && *d.JoinID == id {
			d.JoinID = nil
		}
		if d.WinnerID != nil && *d.WinnerID == id {
			d.WinnerID = nil
		}
	}
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

func copyUser(u *db.User) *db.User {
	c := *u
	if u.VerificationToken != nil {
		t := *u.VerificationToken
		c.VerificationToken = &t
	}
	if u.VerificationExpire != nil {
		e := *u.VerificationExpire
		c.VerificationExpire = &e
	}
	return &c
}

func copyDuel(d *db.Duel) *db.Duel {
	c := *d
	if d.JoinID != nil {
		j := *d.JoinID
		c.JoinID = &j
	}
	if d.WinnerID != nil {
		w := *d.WinnerID
		c.WinnerID = &w
	}
	return &c
}
