package duel

import (
	"context"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/metrics"
)

// Service is the duel engine. A duel is Open until a second, distinct user
// joins; it is then Full and can never take another joiner.
type Service struct {
	repo      Repository
	publisher EventPublisher
	clock     clockwork.Clock
}

func NewService(repo Repository, publisher EventPublisher, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repo, publisher: publisher, clock: clock}
}

func (s *Service) Create(ctx context.Context, creatorID int64) (*db.Duel, error) {
	d := &db.Duel{CreatorID: creatorID}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	log.Infof("Duel %d created by user %d", d.ID, creatorID)
	s.publish(ctx, EventCreated, d, creatorID)
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]db.Duel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*db.Duel, error) {
	return s.repo.Get(ctx, id)
}

// Join checks existence, then fullness, then self-join. The write itself is a
// compare-and-set, so of two concurrent joiners only one succeeds.
func (s *Service) Join(ctx context.Context, duelID, userID int64) (*db.Duel, error) {
	d, err := s.repo.Get(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d.JoinID != nil {
		return nil, ErrDuelFull
	}
	if d.IsParticipant(userID) {
		return nil, ErrSelfJoin
	}

	joined, err := s.repo.SetJoiner(ctx, duelID, userID)
	if err != nil {
		return nil, err
	}

	log.Infof("User %d joined duel %d", userID, duelID)
	s.publish(ctx, EventJoined, joined, userID)
	return joined, nil
}

// Delete removes a duel on behalf of its creator.
func (s *Service) Delete(ctx context.Context, duelID, requesterID int64) error {
	d, err := s.repo.Get(ctx, duelID)
	if err != nil {
		return err
	}
	if d.CreatorID != requesterID {
		log.Warnf("User %d attempted to delete duel %d owned by %d", requesterID, duelID, d.CreatorID)
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, duelID); err != nil {
		return err
	}

	log.Infof("Duel %d deleted", duelID)
	s.publish(ctx, EventDeleted, d, requesterID)
	return nil
}

func (s *Service) publish(ctx context.Context, t EventType, d *db.Duel, actorID int64) {
	metrics.DuelEvents.WithLabelValues(string(t)).Inc()
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishDuelEvent(ctx, Event{
		Type:       t,
		DuelID:     d.ID,
		CreatorID:  d.CreatorID,
		JoinID:     d.JoinID,
		ActorID:    actorID,
		OccurredAt: s.clock.Now(),
	})
	if err != nil {
		log.Warnf("Failed to publish %s for duel %d: %v", t, d.ID, err)
	}
}
