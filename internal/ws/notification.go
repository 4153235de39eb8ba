package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/duel"
	"github.com/krishanu7/geoduel-backend/internal/notify"
	wsPkg "github.com/krishanu7/geoduel-backend/pkg/websocket"
)

// NotificationWorker relays duel events from Redis pub/sub to the connected
// participants.
type NotificationWorker struct {
	RedisClient *redis.Client
	Hub         *wsPkg.Hub
}

func NewNotificationWorker(rdb *redis.Client, hub *wsPkg.Hub) *NotificationWorker {
	return &NotificationWorker{
		RedisClient: rdb,
		Hub:         hub,
	}
}

// Run subscribes to the notifications channel until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	log.Info("Notification worker starting...")
	pubsub := w.RedisClient.Subscribe(ctx, notify.NotificationsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("Notification worker stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn("Notification subscription closed")
				return
			}
			w.Route([]byte(msg.Payload))
		}
	}
}

// Route forwards one encoded duel.Event to every recipient and returns the
// number of connections that accepted it.
func (w *NotificationWorker) Route(payload []byte) int {
	var event duel.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Warnf("Failed to unmarshal notification: %v", err)
		return 0
	}
	if event.DuelID == 0 || event.Type == "" {
		log.Warnf("Ignoring notification without duel or type")
		return 0
	}

	delivered := 0
	for _, userID := range event.Recipients() {
		delivered += w.Hub.SendToUser(userID, payload)
	}
	log.Debugf("Routed %s for duel %d to %d connections", event.Type, event.DuelID, delivered)
	return delivered
}
