package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/krishanu7/geoduel-backend/internal/apperr"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetLeaderboard)
	return r
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, r, apperr.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
