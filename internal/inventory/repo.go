package inventory

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName  = "inventories"
	defaultLocation = "unknown"
)

// Record tracks per-product stock. One record is created at product
// creation time; reservations are appended by the ordering side.
type Record struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID    primitive.ObjectID `bson:"inven_productId" json:"inven_productId"`
	ShopID       primitive.ObjectID `bson:"inven_shopId" json:"inven_shopId"`
	Stock        int                `bson:"inven_stock" json:"inven_stock"`
	Location     string             `bson:"inven_location" json:"inven_location"`
	Reservations []any              `bson:"inven_reservations" json:"inven_reservations"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Repository persists inventory records.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(collectionName)}
}

// Insert creates the initial inventory record for a new product.
func (r *Repository) Insert(ctx context.Context, productID, shopID primitive.ObjectID, stock int) error {
	now := time.Now().UTC()
	record := Record{
		ID:           primitive.NewObjectID(),
		ProductID:    productID,
		ShopID:       shopID,
		Stock:        stock,
		Location:     defaultLocation,
		Reservations: []any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// GetByProductID returns the record for a product, or nil when absent.
func (r *Repository) GetByProductID(ctx context.Context, productID primitive.ObjectID) (*Record, error) {
	var record Record
	err := r.collection.FindOne(ctx, bson.M{"inven_productId": productID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory: %w", err)
	}
	return &record, nil
}

// AdjustStock applies a relative stock change and returns the updated
// record, or nil when the product has no inventory record for the shop.
func (r *Repository) AdjustStock(ctx context.Context, productID, shopID primitive.ObjectID, delta int) (*Record, error) {
	filter := bson.M{"inven_productId": productID, "inven_shopId": shopID}
	update := bson.M{
		"$inc": bson.M{"inven_stock": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record Record
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}
	return &record, nil
}
