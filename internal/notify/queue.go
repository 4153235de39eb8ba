// Package notify delivers verification emails and publishes duel events.
// Verification emails are handed off after the user row commits; delivery
// happens later, either in-process (Dispatcher) or through a Redis list
// drained by cmd/mailer (RedisQueue + Worker).
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/krishanu7/geoduel-backend/internal/auth"
)

const (
	VerificationQueueKey = "geoduel:verification_emails"
	NotificationsChannel = "geoduel:notifications"
)

// Queue is a durable FIFO of verification emails.
type Queue interface {
	Push(ctx context.Context, msg auth.VerificationEmail) error

	// Pop waits up to timeout for a message. It returns (nil, nil) when
	// nothing arrived in time.
	Pop(ctx context.Context, timeout time.Duration) (*auth.VerificationEmail, error)
}

type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisQueue is a Queue on a Redis list: LPUSH to enqueue, BRPOP to dequeue.
type RedisQueue struct {
	rdb listClient
	key string
}

var (
	_ Queue                   = (*RedisQueue)(nil)
	_ auth.VerificationSender = (*RedisQueue)(nil)
)

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: VerificationQueueKey}
}

func (q *RedisQueue) Push(ctx context.Context, msg auth.VerificationEmail) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return oops.Code("QUEUE_ENCODE_FAILED").Wrap(err)
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return oops.Code("QUEUE_PUSH_FAILED").With("user_id", msg.UserID).Wrap(err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*auth.VerificationEmail, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("QUEUE_POP_FAILED").Wrap(err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, oops.Code("QUEUE_POP_FAILED").Errorf("unexpected BRPOP reply of %d elements", len(res))
	}

	var msg auth.VerificationEmail
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, oops.Code("QUEUE_DECODE_FAILED").Wrap(err)
	}
	return &msg, nil
}

// SendVerification enqueues msg for cmd/mailer.
func (q *RedisQueue) SendVerification(ctx context.Context, msg auth.VerificationEmail) error {
	return q.Push(ctx, msg)
}
