package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	UpdateInfo(ctx context.Context, userID primitive.ObjectID, email, name string) (*domain.UserView, error)
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) (*domain.UserView, error)
	UpdateCart(ctx context.Context, userID primitive.ObjectID, m domain.CartMutation) (*domain.UserView, error)
}

type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

const (
	updateInfo     = "info"
	updateCart     = "update_cart"
	updatePassword = "update_password"
)

// userUpdateRequest is the union of the bodies accepted by each update kind.
type userUpdateRequest struct {
	Email       string                    `json:"email"`
	Name        string                    `json:"name"`
	Operation   domain.CartOperation      `json:"operation"`
	Product     *domain.ProductRef        `json:"product"`
	Cart        []domain.CartSnapshotItem `json:"cart"`
	OldPassword string                    `json:"oldPassword"`
	NewPassword string                    `json:"newPassword"`
}

func (req *userUpdateRequest) cartMutation() domain.CartMutation {
	m := domain.CartMutation{Operation: req.Operation}
	if req.Product != nil {
		id := req.Product.ID
		m.Product = &id
	}
	for _, it := range req.Cart {
		m.Items = append(m.Items, domain.CartItem{Product: it.Product.ID, Quantity: it.Quantity})
	}
	if m.Operation == domain.CartAssign && m.Items == nil {
		m.Items = []domain.CartItem{}
	}
	return m
}

// PATCH /api/users/{userId}?update=info|update_cart|update_password
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := objectIDParam(r, "userId")
	if err != nil {
		// RequireOwner has already vetted the id
		respondError(w, r, apperr.Internal(err))
		return
	}

	var req userUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var view *domain.UserView
	switch r.URL.Query().Get("update") {
	case updateInfo:
		view, err = h.users.UpdateInfo(r.Context(), userID, req.Email, req.Name)
	case updateCart:
		view, err = h.users.UpdateCart(r.Context(), userID, req.cartMutation())
	case updatePassword:
		view, err = h.users.UpdatePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
	default:
		err = apperr.Unprocessable("Query update should be from [info, update_cart, update_password]")
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}
