package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductRef identifies a product in a request body. Clients send either the
// bare hex id or a product object carrying an "id" field; any other fields
// of the object, price included, are ignored.
type ProductRef struct {
	ID primitive.ObjectID
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var hex string
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID  string `json:"id"`
			OID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		hex = obj.ID
		if hex == "" {
			hex = obj.OID
		}
	} else if err := json.Unmarshal(data, &hex); err != nil {
		return fmt.Errorf("product reference must be an id or an object: %w", err)
	}

	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return fmt.Errorf("not a valid product id: %q", hex)
	}
	r.ID = id
	return nil
}
