package shops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "shops"

// Repository persists shop documents.
type Repository struct {
	collection *mongo.Collection
}

// NewRepository builds a repository over the shops collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create shops email index: %w", err)
	}
	return nil
}

// Create inserts a new shop and returns it with the generated id.
func (r *Repository) Create(ctx context.Context, shop *Shop) (*Shop, error) {
	now := time.Now().UTC()
	shop.ID = primitive.NewObjectID()
	shop.CreatedAt = now
	shop.UpdatedAt = now
	shop.Email = strings.ToLower(strings.TrimSpace(shop.Email))
	if shop.Status == "" {
		shop.Status = StatusInactive
	}

	if _, err := r.collection.InsertOne(ctx, shop); err != nil {
		return nil, fmt.Errorf("insert shop: %w", err)
	}
	return shop, nil
}

// FindByEmail returns the shop registered under the email, or nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Shop, error) {
	var shop Shop
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}

	err := r.collection.FindOne(ctx, filter).Decode(&shop)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shop by email: %w", err)
	}
	return &shop, nil
}

// FindByID returns the shop with the given id, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (*Shop, error) {
	var shop Shop
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&shop)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shop by id: %w", err)
	}
	return &shop, nil
}
