package syncer

import (
	"testing"
	"time"
)

func TestCloneDataDeepCopies(t *testing.T) {
	original := map[string]any{
		"name": "Milk",
		"tags": []any{"dairy", "breakfast"},
		"nested": map[string]any{
			"quantity": int64(2),
		},
	}

	cloned := cloneData(original)

	original["name"] = "Bread"
	original["nested"].(map[string]any)["quantity"] = int64(9)
	original["tags"].([]any)[0] = "bakery"

	if cloned["name"] != "Milk" {
		t.Fatalf("name: got %v, want Milk", cloned["name"])
	}
	if got := cloned["nested"].(map[string]any)["quantity"]; got != int64(2) {
		t.Fatalf("nested quantity: got %v, want 2", got)
	}
	if got := cloned["tags"].([]any)[0]; got != "dairy" {
		t.Fatalf("tag: got %v, want dairy", got)
	}
}

func TestCloneDataDropsNonStorableValues(t *testing.T) {
	now := time.Now()
	cloned := cloneData(map[string]any{
		"name":     "Milk",
		"when":     now,
		"callback": func() {},
		"channel":  make(chan int),
		"list":     []any{"keep", func() {}},
	})

	if cloned["name"] != "Milk" {
		t.Fatalf("name: got %v", cloned["name"])
	}
	if !cloned["when"].(time.Time).Equal(now) {
		t.Fatalf("time not preserved: %v", cloned["when"])
	}
	if _, ok := cloned["callback"]; ok {
		t.Fatal("function value survived clone")
	}
	if _, ok := cloned["channel"]; ok {
		t.Fatal("channel value survived clone")
	}
	list := cloned["list"].([]any)
	if len(list) != 1 || list[0] != "keep" {
		t.Fatalf("list: got %v, want [keep]", list)
	}
}

func TestCloneDataDepthGuard(t *testing.T) {
	deep := map[string]any{}
	cursor := deep
	for range maxCloneDepth + 8 {
		next := map[string]any{}
		cursor["child"] = next
		cursor = next
	}
	cursor["leaf"] = "bottom"

	// Must terminate; nesting past the guard is truncated.
	cloned := cloneData(deep)
	if cloned == nil {
		t.Fatal("clone returned nil for deep structure")
	}
}

func TestCloneDataNil(t *testing.T) {
	if got := cloneData(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
