// Package server assembles the HTTP API from the domain handlers.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/duel"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
	"github.com/krishanu7/geoduel-backend/internal/leaderboard"
	"github.com/krishanu7/geoduel-backend/internal/metrics"
	"github.com/krishanu7/geoduel-backend/internal/stats"
	"github.com/krishanu7/geoduel-backend/internal/ws"
)

const requestTimeout = 60 * time.Second

type Deps struct {
	Auth        *auth.Service
	Gate        *auth.Gate
	Duels       *duel.Service
	Stats       *stats.Service
	Leaderboard *leaderboard.Service

	// WS is optional; without it /api/v1/ws is not mounted.
	WS   *ws.Handler
	CORS *cors.Cors

	// Health reports readiness of backing stores; nil means always healthy.
	Health func(r *http.Request) error
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(httputil.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	if d.CORS != nil {
		r.Use(d.CORS.Handler)
	}

	r.Get("/healthz", health(d.Health))
	r.Handle("/metrics", metrics.Handler())

	authMW := auth.Authenticator(d.Gate)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Mount("/auth", auth.NewAuthHandler(d.Auth).Routes(authMW))
			r.Mount("/duels", duel.NewHandler(d.Duels).Routes(authMW))
			r.Mount("/statistics", stats.NewHandler(d.Stats).Routes(authMW))
			r.Mount("/leaderboard", leaderboard.NewHandler(d.Leaderboard).Routes())
		})
		if d.WS != nil {
			r.With(authMW).Get("/ws", d.WS.ServeWS)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not found", Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})
	return r
}

func health(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				log.Warnf("Health check failed: %v", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{Error: "unavailable", Code: "UNAVAILABLE"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "ok"})
	}
}
