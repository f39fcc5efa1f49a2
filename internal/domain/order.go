package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Currency every charge is made in.
const Currency = "inr"

type LineItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Order is written once at checkout and never modified.
type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Price     float64            `bson:"price" json:"price"`
	Products  []LineItem         `bson:"products" json:"products"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	StripeID  string             `bson:"stripeId" json:"stripeId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type OrderView struct {
	ID        primitive.ObjectID `json:"id"`
	Price     float64            `json:"price"`
	Products  []CartItemView     `json:"products"`
	User      primitive.ObjectID `json:"user"`
	StripeID  string             `json:"stripeId"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CartSnapshotItem is one entry of the cart a client submits at checkout.
type CartSnapshotItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// CartSnapshot is the cart as submitted by the client when placing an order.
type CartSnapshot struct {
	Items []CartSnapshotItem
}

// LineItems reduces the snapshot to product ids and quantities.
func (s CartSnapshot) LineItems() []LineItem {
	out := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, LineItem{Product: it.Product.ID, Quantity: it.Quantity})
	}
	return out
}

// OrderPlacedEvent is published once an order has been persisted.
type OrderPlacedEvent struct {
	EventID  string    `json:"event_id"`
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id"`
	Price    float64   `json:"price"`
	PlacedAt time.Time `json:"placed_at"`
}
