package products

import (
	"context"
	"testing"

	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubStore struct {
	extensions       map[primitive.ObjectID]map[string]any
	extensionDeletes []primitive.ObjectID
	baseInserts      []*Product
	baseUpdates      []map[string]any
	extUpdates       []map[string]any
	failBaseInsert   error
	updateResult     *Product
}

func newStubStore() *stubStore {
	return &stubStore{extensions: map[primitive.ObjectID]map[string]any{}}
}

func (s *stubStore) InsertExtension(_ context.Context, _ string, id, _ primitive.ObjectID, attributes map[string]any) error {
	s.extensions[id] = attributes
	return nil
}

func (s *stubStore) DeleteExtension(_ context.Context, _ string, id primitive.ObjectID) error {
	s.extensionDeletes = append(s.extensionDeletes, id)
	delete(s.extensions, id)
	return nil
}

func (s *stubStore) InsertBase(_ context.Context, product *Product) error {
	if s.failBaseInsert != nil {
		return s.failBaseInsert
	}
	s.baseInserts = append(s.baseInserts, product)
	return nil
}

func (s *stubStore) UpdateBase(_ context.Context, _ primitive.ObjectID, fields map[string]any) (*Product, error) {
	s.baseUpdates = append(s.baseUpdates, fields)
	return s.updateResult, nil
}

func (s *stubStore) UpdateExtension(_ context.Context, _ string, _ primitive.ObjectID, fields map[string]any) error {
	s.extUpdates = append(s.extUpdates, fields)
	return nil
}

type stubInventory struct {
	inserts []int
}

func (s *stubInventory) Insert(_ context.Context, _, _ primitive.ObjectID, stock int) error {
	s.inserts = append(s.inserts, stock)
	return nil
}

func newTestFactory(t *testing.T, store *stubStore, inv *stubInventory) *Factory {
	t.Helper()
	f, err := NewFactory(store, inv)
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	return f
}

func TestCreateRejectsUnknownTypeWithoutWrites(t *testing.T) {
	store := newStubStore()
	inv := &stubInventory{}
	f := newTestFactory(t, store, inv)

	_, err := f.Create(context.Background(), "Grocery", CreateInput{Name: "apples"})
	if err == nil {
		t.Fatal("expected unknown type to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(store.extensions) != 0 || len(store.baseInserts) != 0 || len(inv.inserts) != 0 {
		t.Fatal("rejected create must not write anything")
	}
}

func TestCreateClothingWritesDraftAndInventory(t *testing.T) {
	store := newStubStore()
	inv := &stubInventory{}
	f := newTestFactory(t, store, inv)

	shopID := primitive.NewObjectID()
	product, err := f.Create(context.Background(), TypeClothing, CreateInput{
		Name:     "linen shirt",
		Price:    35,
		Quantity: 10,
		ShopID:   shopID,
		Attributes: map[string]any{
			"brand":    "acme",
			"material": nil,
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !product.IsDraft || product.IsPublished {
		t.Fatalf("new products must start as drafts, got draft=%v published=%v", product.IsDraft, product.IsPublished)
	}
	if product.Variations == nil || len(product.Variations) != 0 {
		t.Fatalf("variations must be an explicit empty list, got %v", product.Variations)
	}

	attrs, ok := store.extensions[product.ID]
	if !ok {
		t.Fatal("extension must share the base product id")
	}
	if _, hasNil := attrs["material"]; hasNil {
		t.Fatal("nil attributes must be stripped before write")
	}

	if len(inv.inserts) != 1 || inv.inserts[0] != 10 {
		t.Fatalf("expected inventory initialized with stock 10, got %v", inv.inserts)
	}
}

func TestCreateCompensatesWhenBaseInsertFails(t *testing.T) {
	store := newStubStore()
	store.failBaseInsert = pkgerrors.New(pkgerrors.CodeDependency, "write lost")
	inv := &stubInventory{}
	f := newTestFactory(t, store, inv)

	_, err := f.Create(context.Background(), TypeElectronics, CreateInput{Name: "radio", Quantity: 3})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if len(store.extensionDeletes) != 1 {
		t.Fatal("failed base insert must delete the orphaned extension")
	}
	if len(inv.inserts) != 0 {
		t.Fatal("inventory must not be touched on failure")
	}
}

func TestUpdateFlattensAndRoutesAttributes(t *testing.T) {
	store := newStubStore()
	store.updateResult = &Product{Name: "oak desk"}
	f := newTestFactory(t, store, &stubInventory{})

	name := "oak desk"
	_, err := f.Update(context.Background(), TypeFurniture, primitive.NewObjectID(), UpdateRequest{
		Type: TypeFurniture,
		Name: &name,
		Attributes: map[string]any{
			"dimensions": map[string]any{"width": 120},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(store.extUpdates) != 1 {
		t.Fatalf("expected one extension update, got %d", len(store.extUpdates))
	}
	if store.extUpdates[0]["dimensions.width"] != 120 {
		t.Fatalf("attribute bag must flatten to dot paths, got %v", store.extUpdates[0])
	}

	if len(store.baseUpdates) != 1 {
		t.Fatalf("expected one base update, got %d", len(store.baseUpdates))
	}
	if store.baseUpdates[0]["product_name"] != "oak desk" {
		t.Fatalf("unexpected base update %v", store.baseUpdates[0])
	}
}

func TestUpdateMissingProductIsNotFound(t *testing.T) {
	store := newStubStore()
	f := newTestFactory(t, store, &stubInventory{})

	name := "ghost"
	_, err := f.Update(context.Background(), TypeClothing, primitive.NewObjectID(), UpdateRequest{Type: TypeClothing, Name: &name})
	if err == nil {
		t.Fatal("expected not found")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
