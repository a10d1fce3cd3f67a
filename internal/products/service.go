package products

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service exposes catalog management plus the read-side contract consumed
// by the discount collaborator.
type Service interface {
	Create(ctx context.Context, productType string, input CreateInput) (*Product, error)
	Update(ctx context.Context, productType string, id primitive.ObjectID, req UpdateRequest) (*Product, error)
	Publish(ctx context.Context, shopID, productID primitive.ObjectID) error
	Unpublish(ctx context.Context, shopID, productID primitive.ObjectID) error
	ListDrafts(ctx context.Context, shopID primitive.ObjectID, limit, skip int64) ([]Product, error)
	ListPublished(ctx context.Context, shopID primitive.ObjectID, limit, skip int64) ([]Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	List(ctx context.Context, query ListQuery) ([]Summary, error)
	ListByFilter(ctx context.Context, filter bson.M, query ListQuery) ([]Summary, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Product, error)
}

type queryStore interface {
	FindForShop(ctx context.Context, shopID primitive.ObjectID, published bool, limit, skip int64) ([]Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	FindAll(ctx context.Context, filter bson.M, query ListQuery) ([]Summary, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	SetPublishState(ctx context.Context, shopID, productID primitive.ObjectID, published bool) (bool, error)
}

type service struct {
	factory *Factory
	store   queryStore
}

// NewService wires the factory with the read-side repository.
func NewService(factory *Factory, store queryStore) (Service, error) {
	if factory == nil {
		return nil, fmt.Errorf("product factory is required")
	}
	if store == nil {
		return nil, fmt.Errorf("product store is required")
	}
	return &service{factory: factory, store: store}, nil
}

func (s *service) Create(ctx context.Context, productType string, input CreateInput) (*Product, error) {
	return s.factory.Create(ctx, productType, input)
}

func (s *service) Update(ctx context.Context, productType string, id primitive.ObjectID, req UpdateRequest) (*Product, error) {
	return s.factory.Update(ctx, productType, id, req)
}

func (s *service) Publish(ctx context.Context, shopID, productID primitive.ObjectID) error {
	return s.setPublishState(ctx, shopID, productID, true)
}

func (s *service) Unpublish(ctx context.Context, shopID, productID primitive.ObjectID) error {
	return s.setPublishState(ctx, shopID, productID, false)
}

func (s *service) setPublishState(ctx context.Context, shopID, productID primitive.ObjectID, published bool) error {
	matched, err := s.store.SetPublishState(ctx, shopID, productID, published)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set publish state")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found for shop")
	}
	return nil
}

func (s *service) ListDrafts(ctx context.Context, shopID primitive.ObjectID, limit, skip int64) ([]Product, error) {
	return s.store.FindForShop(ctx, shopID, false, limit, skip)
}

func (s *service) ListPublished(ctx context.Context, shopID primitive.ObjectID, limit, skip int64) ([]Product, error) {
	return s.store.FindForShop(ctx, shopID, true, limit, skip)
}

func (s *service) Search(ctx context.Context, keyword string) ([]Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search keyword is required")
	}
	return s.store.Search(ctx, keyword)
}

func (s *service) List(ctx context.Context, query ListQuery) ([]Summary, error) {
	return s.store.FindAll(ctx, bson.M{"is_published": true}, query)
}

// ListByFilter is the lookup-by-filter surface used by the discount
// collaborator to resolve applicable products.
func (s *service) ListByFilter(ctx context.Context, filter bson.M, query ListQuery) ([]Summary, error) {
	return s.store.FindAll(ctx, filter, query)
}

func (s *service) Get(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
