package duel

import (
	"context"
	"time"

	"github.com/krishanu7/geoduel-backend/db"
)

// Repository persists duels. Missing rows yield ErrDuelNotFound.
type Repository interface {
	// Create inserts d and assigns d.ID and d.CreatedAt.
	Create(ctx context.Context, d *db.Duel) error
	Get(ctx context.Context, id int64) (*db.Duel, error)
	List(ctx context.Context) ([]db.Duel, error)

	// SetJoiner sets join_id only if it is still unset, as one atomic step.
	// A duel that already has a joiner yields ErrDuelFull.
	SetJoiner(ctx context.Context, id, userID int64) (*db.Duel, error)
	Delete(ctx context.Context, id int64) error
}

type EventType string

const (
	EventCreated EventType = "duel_created"
	EventJoined  EventType = "duel_joined"
	EventDeleted EventType = "duel_deleted"
)

// Event is published after a duel transition has been persisted.
type Event struct {
	Type       EventType `json:"type"`
	DuelID     int64     `json:"duel_id"`
	CreatorID  int64     `json:"creator_id"`
	JoinID     *int64    `json:"join_id,omitempty"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recipients are the users an event concerns.
func (e Event) Recipients() []int64 {
	ids := []int64{e.CreatorID}
	if e.JoinID != nil && *e.JoinID != e.CreatorID {
		ids = append(ids, *e.JoinID)
	}
	return ids
}

type EventPublisher interface {
	PublishDuelEvent(ctx context.Context, e Event) error
}

// Response is the API view of a duel.
type Response struct {
	ID        int64        `json:"id"`
	CreatorID int64        `json:"creator_id"`
	JoinID    *int64       `json:"join_id"`
	WinnerID  *int64       `json:"winner_id"`
	State     db.DuelState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewResponse(d *db.Duel) Response {
	return Response{
		ID:        d.ID,
		CreatorID: d.CreatorID,
		JoinID:    d.JoinID,
		WinnerID:  d.WinnerID,
		State:     d.State(),
		CreatedAt: d.CreatedAt,
	}
}
