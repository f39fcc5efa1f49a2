package http

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAuth struct {
	user  *domain.User
	token string
	err   error
}

func (f *fakeAuth) Register(_ context.Context, email, name, _ string) (*domain.User, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &domain.User{ID: f.user.ID, Email: email, Name: name}, f.token, nil
}

func (f *fakeAuth) Login(context.Context, string, string) (*domain.User, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) CurrentUser(_ context.Context, id *auth.Identity) *domain.UserView {
	if id == nil {
		return nil
	}
	return &domain.UserView{ID: f.user.ID, Email: id.Email, Name: id.Name}
}

type fakeCatalog struct {
	m        sync.RWMutex
	products []domain.Product
	created  []domain.ProductInput
	err      error
}

func (f *fakeCatalog) List(context.Context) ([]domain.Product, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.products, f.err
}

func (f *fakeCatalog) ListCollection(_ context.Context, category string) ([]domain.Product, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	out := []domain.Product{}
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, f.err
}

func (f *fakeCatalog) Get(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	f.m.RLock()
	defer f.m.RUnlock()
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Product with Id " + id.Hex() + " Not Found")
}

func (f *fakeCatalog) Create(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.created = append(f.created, in)
	p := domain.Product{ID: primitive.NewObjectID()}
	p.Set(in)
	return &p, f.err
}

func (f *fakeCatalog) Update(_ context.Context, id primitive.ObjectID, in domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: id}
	p.Set(in)
	return &p, f.err
}

func (f *fakeCatalog) Delete(context.Context, primitive.ObjectID) error {
	return f.err
}

type fakeUsers struct {
	m        sync.RWMutex
	mutation *domain.CartMutation
	err      error
}

func (f *fakeUsers) UpdateInfo(_ context.Context, id primitive.ObjectID, email, name string) (*domain.UserView, error) {
	return &domain.UserView{ID: id, Email: email, Name: name}, f.err
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, _, _ string) (*domain.UserView, error) {
	return &domain.UserView{ID: id}, f.err
}

func (f *fakeUsers) UpdateCart(_ context.Context, id primitive.ObjectID, m domain.CartMutation) (*domain.UserView, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.mutation = &m
	return &domain.UserView{ID: id}, f.err
}

func (f *fakeUsers) lastMutation() *domain.CartMutation {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.mutation
}

type fakeCheckout struct {
	m        sync.RWMutex
	userID   primitive.ObjectID
	snapshot domain.CartSnapshot
	token    string
	err      error
}

func (f *fakeCheckout) CreateOrder(_ context.Context, userID primitive.ObjectID, snapshot domain.CartSnapshot, token string) (*domain.OrderView, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.userID, f.snapshot, f.token = userID, snapshot, token
	if f.err != nil {
		return nil, f.err
	}
	return &domain.OrderView{ID: primitive.NewObjectID(), User: userID, Price: 250, StripeID: "ch_test"}, nil
}
