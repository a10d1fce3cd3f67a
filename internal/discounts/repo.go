package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopflow/shopflow-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "discounts"

// Repository persists discount codes.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(collectionName)}
}

// EnsureIndexes makes code lookups per shop cheap and unique.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "discount_code", Value: 1}, {Key: "discount_shopId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create discounts index: %w", err)
	}
	return nil
}

// Insert writes a new discount document.
func (r *Repository) Insert(ctx context.Context, discount *Discount) error {
	now := time.Now().UTC()
	discount.ID = primitive.NewObjectID()
	discount.CreatedAt = now
	discount.UpdatedAt = now
	if discount.UsersUsed == nil {
		discount.UsersUsed = []string{}
	}
	if discount.ProductIDs == nil {
		discount.ProductIDs = []primitive.ObjectID{}
	}
	if _, err := r.collection.InsertOne(ctx, discount); err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}

// FindByCode returns a shop's discount for a code, or nil when absent.
func (r *Repository) FindByCode(ctx context.Context, shopID primitive.ObjectID, code string) (*Discount, error) {
	filter := bson.M{"discount_code": code, "discount_shopId": shopID}

	var discount Discount
	err := r.collection.FindOne(ctx, filter).Decode(&discount)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find discount: %w", err)
	}
	return &discount, nil
}

// FindByShop pages through a shop's active codes, newest first.
func (r *Repository) FindByShop(ctx context.Context, shopID primitive.ObjectID, params pagination.Params) ([]Discount, error) {
	filter := bson.M{"discount_shopId": shopID, "discount_is_active": true}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(params.Skip()).
		SetLimit(params.Take())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []Discount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode discounts: %w", err)
	}
	return rows, nil
}

// Delete removes a shop's code. Returns false when nothing matched.
func (r *Repository) Delete(ctx context.Context, shopID primitive.ObjectID, code string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"discount_code": code, "discount_shopId": shopID})
	if err != nil {
		return false, fmt.Errorf("delete discount: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// CancelUse reverses one redemption: drops the user from the used list and
// gives the use back to the pool.
func (r *Repository) CancelUse(ctx context.Context, discountID primitive.ObjectID, userID string) (*Discount, error) {
	update := bson.M{
		"$pull": bson.M{"discount_users_used": userID},
		"$inc": bson.M{
			"discount_max_uses":   1,
			"discount_uses_count": -1,
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var discount Discount
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": discountID}, update, opts).Decode(&discount)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cancel discount use: %w", err)
	}
	return &discount, nil
}
