package service

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userFixture struct {
	svc      *UserService
	users    *mockUsers
	products *mockProducts
	user     domain.User
	hat      domain.Product
}

func newUserFixture(t *testing.T) *userFixture {
	hat := domain.Product{ID: primitive.NewObjectID(), Title: "Hat", Price: 20, ImageURL: "h", Category: "hats"}
	users := newMockUsers()
	products := newMockProducts(hat)
	user := domain.User{Email: "jane@example.com", Name: "Jane", Password: "hashed:Passw0rd!"}
	require.NoError(t, users.Create(context.Background(), &user))

	return &userFixture{
		svc:      NewUserService(users, products, newMockOrders(), plainHasher{}),
		users:    users,
		products: products,
		user:     user,
		hat:      hat,
	}
}

func op(o domain.CartOperation, product *primitive.ObjectID) domain.CartMutation {
	return domain.CartMutation{Operation: o, Product: product}
}

func TestUpdateCart_AddPopulatesProduct(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	view, err := f.svc.UpdateCart(ctx, f.user.ID, op(domain.CartAdd, &f.hat.ID))
	require.NoError(t, err)
	require.Len(t, view.CurrentCartItems, 1)
	assert.Equal(t, "Hat", view.CurrentCartItems[0].Product.Title)
	assert.Equal(t, 1, view.CurrentCartItems[0].Quantity)
	assert.False(t, f.users.get(f.user.ID).CartUpdatedAt.IsZero())

	view, err = f.svc.UpdateCart(ctx, f.user.ID, op(domain.CartAdd, &f.hat.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, view.CurrentCartItems[0].Quantity)
}

func TestUpdateCart_AddUnknownProduct(t *testing.T) {
	f := newUserFixture(t)
	ghost := primitive.NewObjectID()

	_, err := f.svc.UpdateCart(context.Background(), f.user.ID, op(domain.CartAdd, &ghost))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateCart_RemoveAbsentIsNotFound(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateCart(context.Background(), f.user.ID, op(domain.CartRemove, &f.hat.ID))
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, "Product:"+f.hat.ID.Hex()+" not found in cart", apperr.As(err).Message)
	assert.Empty(t, f.users.get(f.user.ID).CurrentCartItems)
}

func TestUpdateCart_RemoveWithoutProduct(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateCart(context.Background(), f.user.ID, op(domain.CartRemove, nil))
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestUpdateCart_UnknownOperation(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateCart(context.Background(), f.user.ID, op("foo", &f.hat.ID))
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Equal(t, "operation must be from [add, remove, delete, assign]", apperr.As(err).Message)
}

func TestUpdateCart_AssignValidates(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateCart(ctx, f.user.ID, domain.CartMutation{
		Operation: domain.CartAssign,
		Items:     []domain.CartItem{{Product: f.hat.ID, Quantity: 0}},
	})
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Contains(t, apperr.As(err).Message, "Failed Validations: ")

	view, err := f.svc.UpdateCart(ctx, f.user.ID, domain.CartMutation{
		Operation: domain.CartAssign,
		Items:     []domain.CartItem{{Product: f.hat.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, view.CurrentCartItems[0].Quantity)
}

func TestUpdateCart_RetriesOnVersionConflict(t *testing.T) {
	f := newUserFixture(t)
	f.users.conflicts = 2

	view, err := f.svc.UpdateCart(context.Background(), f.user.ID, op(domain.CartAdd, &f.hat.ID))
	require.NoError(t, err)
	assert.Len(t, view.CurrentCartItems, 1)
}

func TestUpdateCart_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newUserFixture(t)
	f.users.conflicts = maxSaveAttempts

	_, err := f.svc.UpdateCart(context.Background(), f.user.ID, op(domain.CartAdd, &f.hat.ID))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateCart_UnknownUser(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.UpdateCart(context.Background(), primitive.NewObjectID(), op(domain.CartDelete, &f.hat.ID))
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateInfo(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	view, err := f.svc.UpdateInfo(ctx, f.user.ID, "new@example.com", "New Name")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", view.Email)
	assert.Equal(t, "New Name", view.Name)

	_, err = f.svc.UpdateInfo(ctx, f.user.ID, "bad", "New Name")
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Equal(t, "Failed Validations: Not a valid email: bad", apperr.As(err).Message)
}

func TestUpdatePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdatePassword(ctx, f.user.ID, "wrong", "N3wPassw0rd!")
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
	assert.Equal(t, "Old Password is invalid.", apperr.As(err).Message)

	_, err = f.svc.UpdatePassword(ctx, f.user.ID, "Passw0rd!", "weak")
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Equal(t, "Failed Validations: Not a strong password", apperr.As(err).Message)

	_, err = f.svc.UpdatePassword(ctx, f.user.ID, "Passw0rd!", "N3wPassw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "hashed:N3wPassw0rd!", f.users.get(f.user.ID).Password)
}
