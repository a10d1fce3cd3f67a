package products

import (
	"context"
	"fmt"

	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/maps"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// productStore is the persistence surface the factory needs.
type productStore interface {
	InsertExtension(ctx context.Context, productType string, id, shopID primitive.ObjectID, attributes map[string]any) error
	DeleteExtension(ctx context.Context, productType string, id primitive.ObjectID) error
	InsertBase(ctx context.Context, product *Product) error
	UpdateBase(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*Product, error)
	UpdateExtension(ctx context.Context, productType string, id primitive.ObjectID, fields map[string]any) error
}

// inventoryWriter receives the stock-initialization hook on creation.
type inventoryWriter interface {
	Insert(ctx context.Context, productID, shopID primitive.ObjectID, stock int) error
}

// Handler is the per-type behavior resolved from the registry.
type Handler interface {
	Create(ctx context.Context, f *Factory, input CreateInput) (*Product, error)
	Update(ctx context.Context, f *Factory, id primitive.ObjectID, req UpdateRequest) (*Product, error)
}

// Factory dispatches create/update calls to the handler registered for a
// product type tag. The registry is populated at construction and read-only
// afterwards.
type Factory struct {
	store     productStore
	inventory inventoryWriter
	registry  map[string]Handler
}

func NewFactory(store productStore, inventory inventoryWriter) (*Factory, error) {
	if store == nil {
		return nil, fmt.Errorf("product store is required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory writer is required")
	}
	f := &Factory{
		store:     store,
		inventory: inventory,
		registry:  map[string]Handler{},
	}
	for tag := range extensionCollections {
		f.registry[tag] = variantHandler{productType: tag}
	}
	return f, nil
}

func (f *Factory) resolve(productType string) (Handler, error) {
	handler, ok := f.registry[productType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product type %q", productType))
	}
	return handler, nil
}

// Create builds a product of the given type. Nothing is written when the
// type tag is unknown.
func (f *Factory) Create(ctx context.Context, productType string, input CreateInput) (*Product, error) {
	handler, err := f.resolve(productType)
	if err != nil {
		return nil, err
	}
	return handler.Create(ctx, f, input)
}

// Update applies a partial update to a product of the given type.
func (f *Factory) Update(ctx context.Context, productType string, id primitive.ObjectID, req UpdateRequest) (*Product, error) {
	handler, err := f.resolve(productType)
	if err != nil {
		return nil, err
	}
	return handler.Update(ctx, f, id, req)
}

// variantHandler is the shared behavior parameterized by type tag. The
// extension document is the existence precondition for the base document:
// it is written first, and a failed base insert deletes it again.
type variantHandler struct {
	productType string
}

func (h variantHandler) Create(ctx context.Context, f *Factory, input CreateInput) (*Product, error) {
	id := primitive.NewObjectID()
	attributes := maps.StripNil(input.Attributes)

	if err := f.store.InsertExtension(ctx, h.productType, id, input.ShopID, attributes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product extension")
	}

	product := &Product{
		ID:          id,
		Name:        input.Name,
		Thumb:       input.Thumb,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Type:        h.productType,
		ShopID:      input.ShopID,
		Attributes:  attributes,
		Variations:  []string{},
		IsDraft:     true,
		IsPublished: false,
	}
	if err := f.store.InsertBase(ctx, product); err != nil {
		if cleanupErr := f.store.DeleteExtension(ctx, h.productType, id); cleanupErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cleanupErr, "orphaned extension cleanup failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if err := f.inventory.Insert(ctx, id, input.ShopID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initialize inventory")
	}

	return product, nil
}

func (h variantHandler) Update(ctx context.Context, f *Factory, id primitive.ObjectID, req UpdateRequest) (*Product, error) {
	fields := maps.StripNil(req.baseFields())

	if attrs, ok := fields["product_attributes"].(map[string]any); ok {
		if err := f.store.UpdateExtension(ctx, h.productType, id, maps.Flatten(attrs)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product extension")
		}
	}

	updated, err := f.store.UpdateBase(ctx, id, maps.Flatten(fields))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return updated, nil
}
