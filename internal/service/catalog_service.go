package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

type CatalogService struct {
	products repository.ProductRepository
	cache    cache.CatalogCache
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCatalogService(products repository.ProductRepository, c cache.CatalogCache) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    c,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn("cache get error", logger.Err(err))
		}

		products, err = s.products.List(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, products); errSet != nil {
				slog.Warn("cache set error", logger.Err(errSet))
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return v.([]domain.Product), nil
}

// GroupByCategory indexes products by their category.
func GroupByCategory(products []domain.Product) map[string][]domain.Product {
	out := make(map[string][]domain.Product)
	for _, p := range products {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}

// ListCollection returns the products of one category, never nil.
func (s *CatalogService) ListCollection(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, productNotFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p := &domain.Product{}
	p.Set(in)
	if err := validation.Product(p); err != nil {
		return nil, apperr.FromPersistence(err)
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.FromPersistence(err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in domain.ProductInput) (*domain.Product, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		p, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		p.Set(in)
		if err := validation.Product(p); err != nil {
			return nil, apperr.FromPersistence(err)
		}

		err = s.products.Save(ctx, p)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, productNotFound(id)
		}
		if err != nil {
			return nil, apperr.FromPersistence(err)
		}
		s.invalidate(ctx)
		return p, nil
	}
	return nil, apperr.Conflict(ErrTooManyConflicts.Error())
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return productNotFound(id)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn("cache invalidate error", logger.Err(err))
	}
}

func productNotFound(id primitive.ObjectID) *apperr.Error {
	return apperr.NotFound(fmt.Sprintf("Product with Id %s Not Found", id.Hex()))
}
