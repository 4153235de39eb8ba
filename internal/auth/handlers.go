package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/krishanu7/geoduel-backend/db"
	"github.com/krishanu7/geoduel-backend/internal/apperr"
	"github.com/krishanu7/geoduel-backend/internal/httputil"
)

type AuthHandler struct {
	service *Service
}

func NewAuthHandler(service *Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return apperr.Validation("email and password are required")
	}
	return nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

// UserResponse is the public view of a user; it never carries hashes or tokens.
type UserResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

func NewUserResponse(u *db.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsVerified: u.IsVerified}
}

// Routes mounts the auth endpoints; authMW guards the ones needing a session.
func (h *AuthHandler) Routes(authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/verify", h.VerifyEmail)
	r.Post("/verify", h.VerifyEmail)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/me", h.Me)
		r.Post("/verify/resend", h.ResendVerification)
	})
	return r
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NewUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, ErrUnauthorized)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// VerifyEmail accepts the token as ?token= (email links) or a JSON body.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if r.Method == http.MethodPost {
		var req verifyRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		token = req.Token
	}
	if token == "" {
		httputil.WriteError(w, r, apperr.Validation("token is required"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, ErrUnauthorized)
		return
	}
	if err := h.service.ResendVerification(r.Context(), user.ID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, httputil.MessageResponse{Message: "Verification email sent"})
}
