package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lock"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUsers struct {
	m     sync.RWMutex
	users map[primitive.ObjectID]domain.User
	// conflicts makes the next n saves fail with ErrVersionConflict
	conflicts int
	saveErr   error
	recordErr error
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: map[primitive.ObjectID]domain.User{}}
}

func (m *mockUsers) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.CurrentCartItems = append([]domain.CartItem{}, u.CurrentCartItems...)
	u.OrdersPlaced = append([]primitive.ObjectID{}, u.OrdersPlaced...)
	return &u, nil
}

func (m *mockUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUsers) Create(_ context.Context, u *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return &repository.UniqueViolationError{Fields: []string{"email"}}
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Version = 1
	m.users[u.ID] = *u
	return nil
}

func (m *mockUsers) Save(_ context.Context, u *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	stored, ok := m.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		m.users[u.ID] = stored
		return repository.ErrVersionConflict
	}
	if stored.Version != u.Version {
		return repository.ErrVersionConflict
	}
	u.Version++
	m.users[u.ID] = *u
	return nil
}

func (m *mockUsers) RecordOrder(ctx context.Context, userID, orderID primitive.ObjectID, placedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.recordErr != nil {
		return false, m.recordErr
	}
	u, ok := m.users[userID]
	if !ok || slices.Contains(u.OrdersPlaced, orderID) {
		return false, nil
	}
	u.OrdersPlaced = append(u.OrdersPlaced, orderID)
	if !u.CartUpdatedAt.After(placedAt) {
		u.CurrentCartItems = []domain.CartItem{}
	}
	u.Version++
	m.users[userID] = u
	return true, nil
}

func (m *mockUsers) get(id primitive.ObjectID) domain.User {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.users[id]
}

type mockProducts struct {
	m        sync.RWMutex
	products map[primitive.ObjectID]domain.Product
	listErr  error
	lists    int
}

func newMockProducts(ps ...domain.Product) *mockProducts {
	m := &mockProducts{products: map[primitive.ObjectID]domain.Product{}}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProducts) List(context.Context) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProducts) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *mockProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.m.RLock()
	defer m.m.RUnlock()
	out := []domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProducts) Create(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Version = 1
	m.products[p.ID] = *p
	return nil
}

func (m *mockProducts) Save(_ context.Context, p *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	stored, ok := m.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	m.products[p.ID] = *p
	return nil
}

func (m *mockProducts) Delete(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.products, id)
	return &p, nil
}

type mockOrders struct {
	m         sync.RWMutex
	orders    map[primitive.ObjectID]domain.Order
	createErr error
}

func newMockOrders() *mockOrders {
	return &mockOrders{orders: map[primitive.ObjectID]domain.Order{}}
}

func (m *mockOrders) Create(ctx context.Context, o *domain.Order) error {
	// the driver fails writes on a cancelled context
	if err := ctx.Err(); err != nil {
		return err
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	m.orders[o.ID] = *o
	return nil
}

func (m *mockOrders) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (m *mockOrders) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	out := []domain.Order{}
	for _, id := range ids {
		if o, ok := m.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrders) count() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return len(m.orders)
}

type mockCharger struct {
	m        sync.Mutex
	requests []payment.ChargeRequest
	err      error
	// block, when set, is waited on before answering
	block chan struct{}
	// entered receives a value each time Charge starts
	entered chan struct{}
	// afterCharge runs once the charge has been captured
	afterCharge func()
}

func (c *mockCharger) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.m.Lock()
	defer c.m.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if c.afterCharge != nil {
		c.afterCharge()
	}
	return &payment.Charge{ID: "ch_test"}, nil
}

func (c *mockCharger) calls() []payment.ChargeRequest {
	c.m.Lock()
	defer c.m.Unlock()
	return append([]payment.ChargeRequest(nil), c.requests...)
}

type mockPublisher struct {
	m      sync.Mutex
	orders []domain.Order
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, o *domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.orders = append(p.orders, *o)
	return p.err
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) published() []domain.Order {
	p.m.Lock()
	defer p.m.Unlock()
	return append([]domain.Order(nil), p.orders...)
}

// plainHasher stores passwords with a prefix so tests stay fast.
type plainHasher struct{ err error }

func (h plainHasher) Hash(pw string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + pw, nil
}

func (plainHasher) Compare(hash, pw string) bool { return hash == "hashed:"+pw }

type mockTokens struct{ err error }

func (t mockTokens) Issue(id auth.Identity) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return "token-for-" + id.ID, nil
}

func newTestLocker(t *testing.T) (*lock.RedisLocker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.NewRedisLocker(client), mr
}

var errBoom = errors.New("boom")
