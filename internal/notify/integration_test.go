//go:build integration

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/krishanu7/geoduel-backend/internal/duel"
	rdbPkg "github.com/krishanu7/geoduel-backend/pkg/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := rdbPkg.NewRedisClient(ctx, endpoint, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisQueueAgainstRedis(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	q := NewRedisQueue(rdb)
	mailer := &fakeMailer{}
	w := NewWorker(q, mailer, "https://geoduel.example", nil)
	w.pollTimeout = 500 * time.Millisecond

	processed, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, q.SendVerification(ctx, sampleEmail(1)))
	require.NoError(t, q.SendVerification(ctx, sampleEmail(2)))

	for i := 0; i < 2; i++ {
		processed, err = w.ProcessOne(ctx)
		require.NoError(t, err)
		assert.True(t, processed)
	}
	assert.Equal(t, 2, mailer.count())

	n, err := rdb.LLen(ctx, VerificationQueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisPublisherAgainstRedis(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, NotificationsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewRedisPublisher(rdb).PublishDuelEvent(ctx, duel.Event{
		Type: duel.EventCreated, DuelID: 3, CreatorID: 1, ActorID: 1, OccurredAt: epoch,
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"duel_id":3`)
}
