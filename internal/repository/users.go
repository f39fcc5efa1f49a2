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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

var userIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	},
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	normalizeUser(u)
	u.Version = 1

	if _, err := r.collection.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", classifyWriteError(err))
	}
	return nil
}

func (r *userRepository) Save(ctx context.Context, u *domain.User) error {
	normalizeUser(u)
	next := *u
	next.Version = u.Version + 1

	filter := bson.M{"_id": u.ID, "version": u.Version}
	res, err := r.collection.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", classifyWriteError(err))
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, u.ID)
	}

	u.Version = next.Version
	return nil
}

func (r *userRepository) RecordOrder(ctx context.Context, userID, orderID primitive.ObjectID, placedAt time.Time) (bool, error) {
	filter := bson.M{
		"_id":          userID,
		"ordersPlaced": bson.M{"$ne": orderID},
	}
	// Pipeline update so the cart check and the append happen in one write.
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"ordersPlaced": bson.M{"$concatArrays": bson.A{
			bson.M{"$ifNull": bson.A{"$ordersPlaced", bson.A{}}},
			bson.A{orderID},
		}},
		"currentCartItems": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$cartUpdatedAt", placedAt}},
			"$currentCartItems",
			bson.A{},
		}},
		"version": bson.M{"$add": bson.A{"$version", 1}},
	}}}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to record order: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *userRepository) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func normalizeUser(u *domain.User) {
	if u.CurrentCartItems == nil {
		u.CurrentCartItems = []domain.CartItem{}
	}
	if u.OrdersPlaced == nil {
		u.OrdersPlaced = []primitive.ObjectID{}
	}
}
