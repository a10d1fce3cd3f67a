package products

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registered product type tags.
const (
	TypeClothing    = "Clothing"
	TypeElectronics = "Electronics"
	TypeFurniture   = "Furniture"
)

// Product is the shared base document. Type-specific attributes live in a
// per-type extension document sharing the same id.
//
// Invariant: IsDraft and IsPublished are mutually exclusive; exactly one is
// true at any time, and only Publish/Unpublish flip them.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"product_name" json:"product_name"`
	Thumb       string             `bson:"product_thumb" json:"product_thumb"`
	Description string             `bson:"product_description,omitempty" json:"product_description,omitempty"`
	Price       float64            `bson:"product_price" json:"product_price"`
	Quantity    int                `bson:"product_quantity" json:"product_quantity"`
	Type        string             `bson:"product_type" json:"product_type"`
	ShopID      primitive.ObjectID `bson:"product_shop" json:"product_shop"`
	Attributes  map[string]any     `bson:"product_attributes" json:"product_attributes"`
	RatingsAvg  float64            `bson:"product_ratings_average" json:"product_ratings_average"`
	Variations  []string           `bson:"product_variations" json:"product_variations"`
	IsDraft     bool               `bson:"is_draft" json:"is_draft"`
	IsPublished bool               `bson:"is_published" json:"is_published"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Extension is the type-specific document. Its id equals the base product
// id; the base owns the shared id and the extension stores the same value,
// so neither side needs a join table.
type Extension struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	ShopID     primitive.ObjectID `bson:"product_shop" json:"product_shop"`
	Attributes map[string]any     `bson:",inline" json:"-"`
}
