package products

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRequest is the payload accepted by the create endpoint.
type CreateRequest struct {
	Name        string         `json:"product_name" validate:"required"`
	Thumb       string         `json:"product_thumb"`
	Description string         `json:"product_description"`
	Price       float64        `json:"product_price" validate:"required,gt=0"`
	Quantity    int            `json:"product_quantity" validate:"required,gte=0"`
	Type        string         `json:"product_type" validate:"required"`
	Attributes  map[string]any `json:"product_attributes"`
}

// CreateInput is the validated payload plus the authenticated owner.
type CreateInput struct {
	Name        string
	Thumb       string
	Description string
	Price       float64
	Quantity    int
	Type        string
	ShopID      primitive.ObjectID
	Attributes  map[string]any
}

// UpdateRequest carries optional mutation values. Nil members are stripped
// before the partial update is built. Type routes the update to the right
// extension collection and is itself immutable.
type UpdateRequest struct {
	Type        string         `json:"product_type" validate:"required"`
	Name        *string        `json:"product_name"`
	Thumb       *string        `json:"product_thumb"`
	Description *string        `json:"product_description"`
	Price       *float64       `json:"product_price"`
	Quantity    *int           `json:"product_quantity"`
	Attributes  map[string]any `json:"product_attributes"`
}

// baseFields projects the non-nil base-document fields into an update map.
func (r UpdateRequest) baseFields() map[string]any {
	out := map[string]any{}
	if r.Name != nil {
		out["product_name"] = *r.Name
	}
	if r.Thumb != nil {
		out["product_thumb"] = *r.Thumb
	}
	if r.Description != nil {
		out["product_description"] = *r.Description
	}
	if r.Price != nil {
		out["product_price"] = *r.Price
	}
	if r.Quantity != nil {
		out["product_quantity"] = *r.Quantity
	}
	if r.Attributes != nil {
		out["product_attributes"] = r.Attributes
	}
	return out
}

// ListQuery controls the public catalog listing.
type ListQuery struct {
	Page  int
	Limit int
	Sort  string
}

// Summary is the trimmed projection returned by catalog listings.
type Summary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"product_name" json:"product_name"`
	Price float64            `bson:"product_price" json:"product_price"`
	Thumb string             `bson:"product_thumb" json:"product_thumb"`
}
