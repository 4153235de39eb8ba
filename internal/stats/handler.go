package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/apperr"
	"github.com/krishanu7/geoduel-backend/internal/auth"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// outcomeRequest requires "won" to be present; a bare {} is rejected.
type outcomeRequest struct {
	Won *bool `json:"won"`
}

type StatisticsResponse struct {
	Games    int `json:"games"`
	GamesWon int `json:"games_won"`
	Duels    int `json:"duels"`
	DuelsWon int `json:"duels_won"`
}

type GameOutcomeResponse struct {
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
	Games     int    `json:"games"`
	GamesWon  int    `json:"games_won"`
}

type DuelOutcomeResponse struct {
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
	Duels     int    `json:"duels"`
	DuelsWon  int    `json:"duels_won"`
}

// Routes mounts the statistics endpoints; all of them need a session.
func (h *Handler) Routes(authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMW)
	r.Get("/", h.Get)
	r.Post("/game", h.RecordGame)
	r.Post("/duel", h.RecordDuel)
	return r
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return
	}
	st, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatisticsResponse{
		Games:    st.Games,
		GamesWon: st.GamesWon,
		Duels:    st.Duels,
		DuelsWon: st.DuelsWon,
	})
}

func (h *Handler) RecordGame(w http.ResponseWriter, r *http.Request) {
	user, won, ok := h.decodeOutcome(w, r)
	if !ok {
		return
	}
	st, err := h.service.RecordGame(r.Context(), user.ID, won)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, GameOutcomeResponse{
		Message:   "Game statistics updated",
		UserEmail: user.Email,
		Games:     st.Games,
		GamesWon:  st.GamesWon,
	})
}

func (h *Handler) RecordDuel(w http.ResponseWriter, r *http.Request) {
	user, won, ok := h.decodeOutcome(w, r)
	if !ok {
		return
	}
	st, err := h.service.RecordDuel(r.Context(), user.ID, won)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DuelOutcomeResponse{
		Message:   "Duel statistics updated",
		UserEmail: user.Email,
		Duels:     st.Duels,
		DuelsWon:  st.DuelsWon,
	})
}

func (h *Handler) decodeOutcome(w http.ResponseWriter, r *http.Request) (user *db.User, won bool, ok bool) {
	user, ok = auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return nil, false, false
	}
	var req outcomeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return nil, false, false
	}
	if req.Won == nil {
		httputil.WriteError(w, r, apperr.Validation("won is required"))
		return nil, false, false
	}
	return user, *req.Won, true
}
