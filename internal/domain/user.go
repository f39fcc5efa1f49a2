package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email            string               `bson:"email" json:"email"`
	Name             string               `bson:"name" json:"name"`
	Password         string               `bson:"password" json:"-"`
	CurrentCartItems []CartItem           `bson:"currentCartItems" json:"currentCartItems"`
	OrdersPlaced     []primitive.ObjectID `bson:"ordersPlaced" json:"ordersPlaced"`
	// CartUpdatedAt is the time of the last cart operation, at millisecond
	// precision.
	CartUpdatedAt time.Time `bson:"cartUpdatedAt,omitempty" json:"-"`
	Version       int64     `bson:"version" json:"-"`
}

// UserView is the user as rendered to clients, with cart items and orders
// resolved to full documents.
type UserView struct {
	ID               primitive.ObjectID `json:"id"`
	Email            string             `json:"email"`
	Name             string             `json:"name"`
	CurrentCartItems []CartItemView     `json:"currentCartItems"`
	OrdersPlaced     []OrderView        `json:"ordersPlaced"`
}

type CartItemView struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}
