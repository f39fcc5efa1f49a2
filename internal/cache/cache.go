package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CatalogCache holds the full product list.
type CatalogCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
