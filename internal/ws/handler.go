// Package ws serves the per-user WebSocket notification feed.
package ws

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
	wsPkg "github.com/krishanu7/geoduel-backend/pkg/websocket"
)

type Handler struct {
	Hub *wsPkg.Hub
}

func NewHandler(hub *wsPkg.Hub) *Handler {
	return &Handler{
		Hub: hub,
	}
}

// ServeWS upgrades an authenticated request. The Session Gate runs first, so
// the user is already in the request context.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return
	}

	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WS upgrade failed for user %d: %v", user.ID, err)
		return
	}

	client := wsPkg.NewClient(user.ID, conn)
	h.Hub.AddClient(client)

	go client.WritePump()
	go func() {
		defer h.Hub.RemoveClient(client)
		client.ReadPump()
	}()
}
