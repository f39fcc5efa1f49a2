package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CheckoutService interface {
	CreateOrder(ctx context.Context, userID primitive.ObjectID, snapshot domain.CartSnapshot, paymentToken string) (*domain.OrderView, error)
}

type OrderHandler struct {
	checkout CheckoutService
}

func NewOrderHandler(checkout CheckoutService) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

type orderRequest struct {
	Cart  []domain.CartSnapshotItem `json:"cart" validate:"required"`
	Token string                    `json:"token" validate:"required"`
}

// POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(auth.IdentityFrom(r.Context()).ID)
	if err != nil {
		respondError(w, r, apperr.Forbidden("Forbidden"))
		return
	}
	req := bodyFrom[orderRequest](r)

	order, err := h.checkout.CreateOrder(r.Context(), userID, domain.CartSnapshot{Items: req.Cart}, req.Token)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, order)
}
