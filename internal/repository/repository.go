package repository

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Save on every repository is an optimistic write: it succeeds only if the
// stored version still equals the version of the passed document, and bumps
// the version on success. Otherwise it returns ErrVersionConflict, or
// ErrNotFound when the document is gone.

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Save(ctx context.Context, u *domain.User) error
	// RecordOrder appends orderID to the user's orders unless it is already
	// recorded, and reports whether it wrote. The cart is emptied only if it
	// has not changed after placedAt.
	RecordOrder(ctx context.Context, userID, orderID primitive.ObjectID, placedAt time.Time) (bool, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Save(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Order, error)
}
