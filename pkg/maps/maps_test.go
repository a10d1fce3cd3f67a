package maps

import (
	"reflect"
	"testing"
)

func TestStripNilRemovesNilValues(t *testing.T) {
	in := map[string]any{
		"keep":  "value",
		"drop":  nil,
		"count": 0,
	}

	got := StripNil(in)

	want := map[string]any{"keep": "value", "count": 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStripNilDescendsAndDropsEmptyMaps(t *testing.T) {
	in := map[string]any{
		"nested": map[string]any{
			"keep": "x",
			"drop": nil,
		},
		"empty": map[string]any{
			"only": nil,
		},
	}

	got := StripNil(in)

	if _, ok := got["empty"]; ok {
		t.Fatalf("expected empty nested map to be dropped, got %v", got)
	}
	nested, ok := got["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %v", got["nested"])
	}
	if nested["keep"] != "x" {
		t.Fatalf("unexpected nested content %v", nested)
	}
	if _, ok := nested["drop"]; ok {
		t.Fatalf("nil member should be removed from nested map")
	}
}

func TestFlattenProducesDotPaths(t *testing.T) {
	in := map[string]any{
		"product_attributes": map[string]any{
			"brand": "acme",
			"dimensions": map[string]any{
				"width": 10,
			},
		},
		"product_name": "desk",
	}

	got := Flatten(in)

	want := map[string]any{
		"product_attributes.brand":            "acme",
		"product_attributes.dimensions.width": 10,
		"product_name":                        "desk",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFlattenTreatsSlicesAsLeaves(t *testing.T) {
	in := map[string]any{
		"variations": []string{"s", "m"},
	}

	got := Flatten(in)

	if !reflect.DeepEqual(got["variations"], []string{"s", "m"}) {
		t.Fatalf("slices must not be flattened, got %v", got)
	}
}
