package keystore

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "keys"

// Store is the credential persistence surface consumed by the auth
// middleware and the access service.
type Store interface {
	Upsert(ctx context.Context, shopID primitive.ObjectID, publicKey, privateKey, refreshToken string) (string, error)
	FindByShopID(ctx context.Context, shopID primitive.ObjectID) (*Credential, error)
	FindByRefreshToken(ctx context.Context, token string) (*Credential, error)
	FindByUsedRefreshToken(ctx context.Context, token string) (*Credential, error)
	RotateRefreshToken(ctx context.Context, shopID primitive.ObjectID, newToken, consumedToken string) error
	Delete(ctx context.Context, shopID primitive.ObjectID) error
}

// MongoStore implements Store on the keys collection.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique shop_id index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shop_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create keys shop_id index: %w", err)
	}
	return nil
}

// Upsert creates or fully replaces the credential record for the shop,
// resetting the used-token set. Returns the stored public key.
func (s *MongoStore) Upsert(ctx context.Context, shopID primitive.ObjectID, publicKey, privateKey, refreshToken string) (string, error) {
	now := time.Now().UTC()
	filter := bson.M{"shop_id": shopID}
	update := bson.M{
		"$set": bson.M{
			"public_key":          publicKey,
			"private_key":         privateKey,
			"refresh_token":       refreshToken,
			"refresh_tokens_used": []string{},
			"updated_at":          now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored Credential
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert credential")
	}
	return stored.PublicKey, nil
}

func (s *MongoStore) FindByShopID(ctx context.Context, shopID primitive.ObjectID) (*Credential, error) {
	return s.findOne(ctx, bson.M{"shop_id": shopID})
}

// FindByRefreshToken locates the credential whose current refresh token
// matches.
func (s *MongoStore) FindByRefreshToken(ctx context.Context, token string) (*Credential, error) {
	return s.findOne(ctx, bson.M{"refresh_token": token})
}

// FindByUsedRefreshToken locates a credential whose used-set contains the
// token; a hit means the token was already rotated away.
func (s *MongoStore) FindByUsedRefreshToken(ctx context.Context, token string) (*Credential, error) {
	return s.findOne(ctx, bson.M{"refresh_tokens_used": token})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Credential, error) {
	var cred Credential
	err := s.collection.FindOne(ctx, filter).Decode(&cred)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find credential")
	}
	return &cred, nil
}

// RotateRefreshToken atomically installs newToken as current and appends
// consumedToken to the used set. The filter requires the current token to
// still equal consumedToken, so two racing rotations cannot both succeed:
// the loser matches nothing and gets a conflict.
func (s *MongoStore) RotateRefreshToken(ctx context.Context, shopID primitive.ObjectID, newToken, consumedToken string) error {
	filter := bson.M{"shop_id": shopID, "refresh_token": consumedToken}
	update := bson.M{
		"$set": bson.M{
			"refresh_token": newToken,
			"updated_at":    time.Now().UTC(),
		},
		"$addToSet": bson.M{"refresh_tokens_used": consumedToken},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh token")
	}
	if result.ModifiedCount == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "refresh token rotation lost to a concurrent update")
	}
	return nil
}

// Delete removes the credential record. Deleting a missing record is not an
// error.
func (s *MongoStore) Delete(ctx context.Context, shopID primitive.ObjectID) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"shop_id": shopID}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete credential")
	}
	return nil
}
