package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// viewBuilder resolves product and order references into full documents.
// References to documents that no longer exist resolve to nil products and
// are dropped from order lists.
type viewBuilder struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func (b viewBuilder) User(ctx context.Context, u *domain.User) (*domain.UserView, error) {
	orders, err := b.orders.FindByIDs(ctx, u.OrdersPlaced)
	if err != nil {
		return nil, err
	}

	ids := productIDs(u.CurrentCartItems)
	for _, o := range orders {
		ids = append(ids, lineItemIDs(o.Products)...)
	}
	byID, err := b.productIndex(ctx, ids)
	if err != nil {
		return nil, err
	}

	orderByID := make(map[primitive.ObjectID]domain.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	view := &domain.UserView{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		CurrentCartItems: make([]domain.CartItemView, 0, len(u.CurrentCartItems)),
		OrdersPlaced:     make([]domain.OrderView, 0, len(u.OrdersPlaced)),
	}
	for _, it := range u.CurrentCartItems {
		view.CurrentCartItems = append(view.CurrentCartItems, domain.CartItemView{Product: byID[it.Product], Quantity: it.Quantity})
	}
	// keep the user's ordering rather than the store's
	for _, id := range u.OrdersPlaced {
		if o, ok := orderByID[id]; ok {
			view.OrdersPlaced = append(view.OrdersPlaced, orderView(&o, byID))
		}
	}
	return view, nil
}

func (b viewBuilder) Order(ctx context.Context, o *domain.Order) (*domain.OrderView, error) {
	byID, err := b.productIndex(ctx, lineItemIDs(o.Products))
	if err != nil {
		return nil, err
	}
	v := orderView(o, byID)
	return &v, nil
}

func (b viewBuilder) productIndex(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.Product, error) {
	index := make(map[primitive.ObjectID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	products, err := b.products.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index, nil
}

func orderView(o *domain.Order, byID map[primitive.ObjectID]*domain.Product) domain.OrderView {
	v := domain.OrderView{
		ID:        o.ID,
		Price:     o.Price,
		Products:  make([]domain.CartItemView, 0, len(o.Products)),
		User:      o.User,
		StripeID:  o.StripeID,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Products {
		v.Products = append(v.Products, domain.CartItemView{Product: byID[it.Product], Quantity: it.Quantity})
	}
	return v
}

func productIDs(items []domain.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Product)
	}
	return ids
}

func lineItemIDs(items []domain.LineItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Product)
	}
	return ids
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
