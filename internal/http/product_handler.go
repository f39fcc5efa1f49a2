package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListCollection(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductHandler struct {
	catalog CatalogService
}

func NewProductHandler(catalog CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// productRequest carries every product field; price is a pointer so that a
// zero price still counts as present.
type productRequest struct {
	Title    string   `json:"title" validate:"required"`
	Price    *float64 `json:"price" validate:"required"`
	ImageURL string   `json:"imageUrl" validate:"required"`
	Category string   `json:"category" validate:"required"`
}

func (p *productRequest) input() domain.ProductInput {
	return domain.ProductInput{
		Title:    p.Title,
		Price:    *p.Price,
		ImageURL: p.ImageURL,
		Category: p.Category,
	}
}

// GET /api/products?collection=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query()["collection"]
	if len(collection) > 1 {
		respondError(w, r, apperr.BadRequest("Collection query must be string or undefined!"))
		return
	}

	if len(collection) == 1 && collection[0] != "" {
		products, err := h.catalog.ListCollection(r.Context(), collection[0])
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, products)
		return
	}

	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, service.GroupByCategory(products))
}

// GET /api/products/{productId}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := bodyFrom[productRequest](r)
	p, err := h.catalog.Create(r.Context(), req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, p)
}

// PATCH /api/products/{productId}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	req := bodyFrom[productRequest](r)
	p, err := h.catalog.Update(r.Context(), id, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, p)
}

// DELETE /api/products/{productId}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, raw, err := objectIDParam(r, "productId")
	if err != nil {
		respondError(w, r, apperr.BadRequest(fmt.Sprintf("Not a valid ProductId: %s", raw)))
		return id, false
	}
	return id, true
}
