package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const ordersCollection = "orders"

var orderIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "user", Value: 1}}},
}

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepository{collection: db.Collection(ordersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if o.Products == nil {
		o.Products = []domain.LineItem{}
	}
	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", classifyWriteError(err))
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var o domain.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Order, error) {
	if len(ids) == 0 {
		return []domain.Order{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	orders := []domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
