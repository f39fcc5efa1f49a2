package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	views  viewBuilder
}

func NewAuthService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		views:  viewBuilder{products: products, orders: orders},
	}
}

// Register creates the user and returns it with a freshly issued token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, string, error) {
	if err := validation.NewUser(email, name, password); err != nil {
		return nil, "", apperr.FromPersistence(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	u := &domain.User{Email: email, Name: name, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", apperr.FromPersistence(err)
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.Forbidden(invalidCredentials)
	}
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if !s.hasher.Compare(u.Password, password) {
		return nil, "", apperr.Forbidden(invalidCredentials)
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// CurrentUser resolves the identity to a populated user. It never fails:
// any problem is logged and reported as no user.
func (s *AuthService) CurrentUser(ctx context.Context, id *auth.Identity) *domain.UserView {
	if id == nil {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(id.ID)
	if err != nil {
		return nil
	}

	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.FromContext(ctx).Warn("failed to load current user",
				slog.String(logger.UserID, id.ID), logger.Err(err))
		}
		return nil
	}

	view, err := s.views.User(ctx, u)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to populate current user",
			slog.String(logger.UserID, id.ID), logger.Err(err))
		return nil
	}
	return view
}

func (s *AuthService) issue(u *domain.User) (string, error) {
	token, err := s.tokens.Issue(auth.Identity{ID: u.ID.Hex(), Email: u.Email, Name: u.Name})
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}
