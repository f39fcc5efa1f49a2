package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const productsCollection = "products"

var productIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "category", Value: 1}}},
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{collection: db.Collection(productsCollection)}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.find(ctx, bson.M{})
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *productRepository) find(ctx context.Context, filter bson.M) ([]domain.Product, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Version = 1
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", classifyWriteError(err))
	}
	return nil
}

func (r *productRepository) Save(ctx context.Context, p *domain.Product) error {
	next := *p
	next.Version = p.Version + 1

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID, "version": p.Version}, next)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", classifyWriteError(err))
	}
	if res.MatchedCount == 0 {
		n, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": p.ID})
		if countErr != nil {
			return fmt.Errorf("failed to check product: %w", countErr)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	p.Version = next.Version
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &p, nil
}
