package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxSaveAttempts = 3

type UserService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	hasher   PasswordHasher
	views    viewBuilder
}

func NewUserService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	hasher PasswordHasher,
) *UserService {
	return &UserService{
		users:    users,
		products: products,
		hasher:   hasher,
		views:    viewBuilder{products: products, orders: orders},
	}
}

func (s *UserService) UpdateInfo(ctx context.Context, userID primitive.ObjectID, email, name string) (*domain.UserView, error) {
	if err := validation.UserInfo(email, name); err != nil {
		return nil, apperr.FromPersistence(err)
	}
	return s.mutate(ctx, userID, func(u *domain.User) error {
		u.Email = email
		u.Name = name
		return nil
	})
}

func (s *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) (*domain.UserView, error) {
	return s.mutate(ctx, userID, func(u *domain.User) error {
		if !s.hasher.Compare(u.Password, oldPassword) {
			return apperr.Forbidden("Old Password is invalid.")
		}
		if err := validation.Password(newPassword); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		u.Password = hash
		return nil
	})
}

// UpdateCart applies one cart operation to the user's persisted cart.
func (s *UserService) UpdateCart(ctx context.Context, userID primitive.ObjectID, m domain.CartMutation) (*domain.UserView, error) {
	if !m.Operation.Valid() {
		return nil, apperr.Unprocessable(domain.ErrUnknownCartOperation.Error())
	}

	switch m.Operation {
	case domain.CartAdd:
		if m.Product != nil {
			if _, err := s.products.FindByID(ctx, *m.Product); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, productNotFound(*m.Product)
				}
				return nil, apperr.Internal(err)
			}
		}
	case domain.CartAssign:
		if err := validation.Cart(m.Items); err != nil {
			return nil, apperr.FromPersistence(err)
		}
	}

	return s.mutate(ctx, userID, func(u *domain.User) error {
		items, err := domain.ApplyCartMutation(u.CurrentCartItems, m)
		switch {
		case errors.Is(err, domain.ErrProductNotInCart):
			return apperr.NotFound(fmt.Sprintf("Product:%s not found in cart", m.Product.Hex()))
		case errors.Is(err, domain.ErrProductRequired):
			return apperr.BadRequest(err.Error())
		case err != nil:
			return err
		}
		u.CurrentCartItems = items
		u.CartUpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
		return nil
	})
}

// mutate loads the user, applies fn and saves, retrying from a fresh read
// when another writer got there first.
func (s *UserService) mutate(ctx context.Context, userID primitive.ObjectID, fn func(u *domain.User) error) (*domain.UserView, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		u, err := s.users.FindByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Not a valid user")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}

		if err := fn(u); err != nil {
			return nil, apperr.FromPersistence(err)
		}

		err = s.users.Save(ctx, u)
		if errors.Is(err, repository.ErrVersionConflict) {
			logger.FromContext(ctx).Debug("user version conflict, retrying",
				slog.String(logger.UserID, userID.Hex()), slog.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Not a valid user")
		}
		if err != nil {
			return nil, apperr.FromPersistence(err)
		}

		view, err := s.views.User(ctx, u)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return view, nil
	}
	return nil, apperr.Conflict(ErrTooManyConflicts.Error())
}
