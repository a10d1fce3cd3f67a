package products

import (
	"context"
	"testing"

	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubQueryStore struct {
	publishCalls []bool
	matched      bool
	searched     []string
	lastFilter   bson.M
}

func (s *stubQueryStore) FindForShop(context.Context, primitive.ObjectID, bool, int64, int64) ([]Product, error) {
	return nil, nil
}

func (s *stubQueryStore) Search(_ context.Context, keyword string) ([]Product, error) {
	s.searched = append(s.searched, keyword)
	return []Product{}, nil
}

func (s *stubQueryStore) FindAll(_ context.Context, filter bson.M, _ ListQuery) ([]Summary, error) {
	s.lastFilter = filter
	return []Summary{}, nil
}

func (s *stubQueryStore) FindByID(context.Context, primitive.ObjectID) (*Product, error) {
	return nil, nil
}

func (s *stubQueryStore) SetPublishState(_ context.Context, _, _ primitive.ObjectID, published bool) (bool, error) {
	s.publishCalls = append(s.publishCalls, published)
	return s.matched, nil
}

func newQueryService(t *testing.T, store *stubQueryStore) Service {
	t.Helper()
	factory, err := NewFactory(newStubStore(), &stubInventory{})
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	svc, err := NewService(factory, store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPublishUnpublishSetOpposingStates(t *testing.T) {
	store := &stubQueryStore{matched: true}
	svc := newQueryService(t, store)

	shopID, productID := primitive.NewObjectID(), primitive.NewObjectID()
	if err := svc.Publish(context.Background(), shopID, productID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := svc.Unpublish(context.Background(), shopID, productID); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	if len(store.publishCalls) != 2 || store.publishCalls[0] != true || store.publishCalls[1] != false {
		t.Fatalf("unexpected publish sequence %v", store.publishCalls)
	}
}

func TestPublishUnownedProductIsNotFound(t *testing.T) {
	store := &stubQueryStore{matched: false}
	svc := newQueryService(t, store)

	err := svc.Publish(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSearchRequiresKeyword(t *testing.T) {
	store := &stubQueryStore{}
	svc := newQueryService(t, store)

	if _, err := svc.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected empty keyword to be rejected")
	}
	if len(store.searched) != 0 {
		t.Fatal("rejected search must not hit the store")
	}

	if _, err := svc.Search(context.Background(), " lamp "); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(store.searched) != 1 || store.searched[0] != "lamp" {
		t.Fatalf("expected trimmed keyword, got %v", store.searched)
	}
}

func TestListScopesToPublished(t *testing.T) {
	store := &stubQueryStore{}
	svc := newQueryService(t, store)

	if _, err := svc.List(context.Background(), ListQuery{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastFilter["is_published"] != true {
		t.Fatalf("public listing must filter published products, got %v", store.lastFilter)
	}
}

func TestGetMissingProductIsNotFound(t *testing.T) {
	svc := newQueryService(t, &stubQueryStore{})

	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
