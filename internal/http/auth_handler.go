package http

import (
	"context"
	"io"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	CurrentUser(ctx context.Context, id *auth.Identity) *domain.UserView
}

type AuthHandler struct {
	svc      AuthService
	sessions *auth.SessionStore
}

func NewAuthHandler(svc AuthService, sessions *auth.SessionStore) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type currentUserResponse struct {
	CurrentUser *domain.UserView `json:"currentUser"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := bodyFrom[registerRequest](r)

	u, token, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.sessions.Create(w, auth.SessionContext{Token: token}); err != nil {
		respondError(w, r, apperr.Internal(err))
		return
	}
	respondJSON(w, r, http.StatusCreated, u)
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := bodyFrom[loginRequest](r)

	u, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.sessions.Create(w, auth.SessionContext{Token: token}); err != nil {
		respondError(w, r, apperr.Internal(err))
		return
	}
	respondJSON(w, r, http.StatusOK, u)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "LoggedOut!")
}

// GET /api/auth/current-user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	view := h.svc.CurrentUser(r.Context(), auth.IdentityFrom(r.Context()))
	respondJSON(w, r, http.StatusOK, currentUserResponse{CurrentUser: view})
}
