package duel

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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

func (h *Handler) Routes(authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", h.Create)
		r.Put("/{id}/join", h.Join)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	duels, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	resp := make([]Response, 0, len(duels))
	for i := range duels {
		resp = append(resp, NewResponse(&duels[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := duelID(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewResponse(d))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return
	}
	d, err := h.service.Create(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NewResponse(d))
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return
	}
	id, err := duelID(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	d, err := h.service.Join(r.Context(), id, user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewResponse(d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, auth.ErrUnauthorized)
		return
	}
	id, err := duelID(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id, user.ID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "Duel deleted"})
}

func duelID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("duel id must be a positive integer")
	}
	return id, nil
}
