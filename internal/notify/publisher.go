package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/krishanu7/geoduel-backend/internal/duel"
)

type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher broadcasts duel events on NotificationsChannel.
type RedisPublisher struct {
	rdb     publishClient
	channel string
}

var _ duel.EventPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: NotificationsChannel}
}

func (p *RedisPublisher) PublishDuelEvent(ctx context.Context, e duel.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return oops.Code("EVENT_ENCODE_FAILED").Wrap(err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return oops.Code("EVENT_PUBLISH_FAILED").With("duel_id", e.DuelID).Wrap(err)
	}
	return nil
}
