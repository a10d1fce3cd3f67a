package products

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

const baseCollection = "products"

// extensionCollections maps a type tag to its extension collection.
var extensionCollections = map[string]string{
	TypeClothing:    "clothing",
	TypeElectronics: "electronics",
	TypeFurniture:   "furnitures",
}

// Repository persists base products and their type-specific extensions.
type Repository struct {
	db   *mongo.Database
	base *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{db: db, base: db.Collection(baseCollection)}
}

// EnsureIndexes creates the text index backing catalog search.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.base.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_name", Value: "text"},
			{Key: "product_description", Value: "text"},
		},
	})
	if err != nil {
		return fmt.Errorf("create products text index: %w", err)
	}
	return nil
}

func (r *Repository) extension(productType string) (*mongo.Collection, error) {
	name, ok := extensionCollections[productType]
	if !ok {
		return nil, fmt.Errorf("no extension collection for type %q", productType)
	}
	return r.db.Collection(name), nil
}

// InsertExtension writes the type-specific document under the shared id.
func (r *Repository) InsertExtension(ctx context.Context, productType string, id, shopID primitive.ObjectID, attributes map[string]any) error {
	coll, err := r.extension(productType)
	if err != nil {
		return err
	}

	doc := bson.M{"_id": id, "product_shop": shopID}
	for k, v := range attributes {
		doc[k] = v
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s extension: %w", productType, err)
	}
	return nil
}

// DeleteExtension removes the extension document; used as the compensating
// action when the base insert fails after the extension was created.
func (r *Repository) DeleteExtension(ctx context.Context, productType string, id primitive.ObjectID) error {
	coll, err := r.extension(productType)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s extension: %w", productType, err)
	}
	return nil
}

// InsertBase writes the shared base document.
func (r *Repository) InsertBase(ctx context.Context, product *Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if _, err := r.base.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateBase applies a flattened partial update to the base document and
// returns the updated product.
func (r *Repository) UpdateBase(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Product
	err := r.base.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &updated, nil
}

// UpdateExtension applies a flattened partial update to the extension.
func (r *Repository) UpdateExtension(ctx context.Context, productType string, id primitive.ObjectID, fields map[string]any) error {
	coll, err := r.extension(productType)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}
	if _, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update %s extension: %w", productType, err)
	}
	return nil
}

// FindForShop lists a shop's products filtered by draft/published state.
func (r *Repository) FindForShop(ctx context.Context, shopID primitive.ObjectID, published bool, limit, skip int64) ([]Product, error) {
	filter := bson.M{"product_shop": shopID}
	if published {
		filter["is_published"] = true
	} else {
		filter["is_draft"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	return r.decodeProducts(ctx, filter, opts)
}

// Search runs a text search over published products, best match first.
func (r *Repository) Search(ctx context.Context, keyword string) ([]Product, error) {
	filter := bson.M{
		"$text":        bson.M{"$search": keyword},
		"is_draft":     false,
		"is_published": true,
	}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})

	return r.decodeProducts(ctx, filter, opts)
}

// FindAll pages through products matching the filter. Sort key "ctime"
// means newest first by creation order; anything else is ascending.
func (r *Repository) FindAll(ctx context.Context, filter bson.M, query ListQuery) ([]Summary, error) {
	sortDir := 1
	if query.Sort == "ctime" {
		sortDir = -1
	}
	params := pagination.Params{Page: query.Page, Limit: query.Limit}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: sortDir}}).
		SetSkip(params.Skip()).
		SetLimit(params.Take()).
		SetProjection(bson.M{"product_name": 1, "product_price": 1, "product_thumb": 1})

	cursor, err := r.base.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []Summary
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return rows, nil
}

// FindByID returns the base document, or nil when absent.
func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var product Product
	err := r.base.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

// SetPublishState flips the draft/published pair in one atomic update,
// scoped to the owning shop. Returns false when the product does not belong
// to the shop.
func (r *Repository) SetPublishState(ctx context.Context, shopID, productID primitive.ObjectID, published bool) (bool, error) {
	filter := bson.M{"_id": productID, "product_shop": shopID}
	update := bson.M{"$set": bson.M{
		"is_draft":     !published,
		"is_published": published,
		"updated_at":   time.Now().UTC(),
	}}

	result, err := r.base.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("set publish state: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *Repository) decodeProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Product, error) {
	cursor, err := r.base.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []Product
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return rows, nil
}
