package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type CartOperation string

const (
	CartAdd    CartOperation = "add"
	CartRemove CartOperation = "remove"
	CartDelete CartOperation = "delete"
	CartAssign CartOperation = "assign"
)

var (
	ErrUnknownCartOperation = errors.New("operation must be from [add, remove, delete, assign]")
	ErrProductNotInCart     = errors.New("product not found in cart")
	ErrProductRequired      = errors.New("product is required for this operation")
)

func (op CartOperation) Valid() bool {
	switch op {
	case CartAdd, CartRemove, CartDelete, CartAssign:
		return true
	}
	return false
}

// CartMutation is a single request against a user's cart. Product is used by
// add, remove and delete; Items only by assign.
type CartMutation struct {
	Operation CartOperation
	Product   *primitive.ObjectID
	Items     []CartItem
}

// ApplyCartMutation returns the cart that results from applying m to items.
// The input slice is never modified. Catalog existence of the product and
// validity of assigned items are the caller's concern.
func ApplyCartMutation(items []CartItem, m CartMutation) ([]CartItem, error) {
	switch m.Operation {
	case CartAdd:
		if m.Product == nil {
			return cloneItems(items), nil
		}
		out := cloneItems(items)
		if i := indexOf(out, *m.Product); i >= 0 {
			out[i].Quantity++
			return out, nil
		}
		return append(out, CartItem{Product: *m.Product, Quantity: 1}), nil

	case CartRemove:
		if m.Product == nil {
			return nil, ErrProductRequired
		}
		i := indexOf(items, *m.Product)
		if i < 0 {
			return nil, ErrProductNotInCart
		}
		out := cloneItems(items)
		if out[i].Quantity > 1 {
			out[i].Quantity--
			return out, nil
		}
		return append(out[:i], out[i+1:]...), nil

	case CartDelete:
		if m.Product == nil {
			return nil, ErrProductRequired
		}
		out := make([]CartItem, 0, len(items))
		for _, it := range items {
			if it.Product != *m.Product {
				out = append(out, it)
			}
		}
		return out, nil

	case CartAssign:
		return cloneItems(m.Items), nil
	}

	return nil, ErrUnknownCartOperation
}

func indexOf(items []CartItem, product primitive.ObjectID) int {
	for i, it := range items {
		if it.Product == product {
			return i
		}
	}
	return -1
}

func cloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
