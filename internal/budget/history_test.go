package budget

import "testing"

func TestHistoryPushPop(t *testing.T) {
	h := NewHistory(0)
	if h.CanUndo() {
		t.Fatal("new history should be empty")
	}
	doc := sampleDoc()
	h.Push(doc)
	doc.Outflows[0].Category = "Changed"
	h.Push(doc)

	got, ok := h.Pop()
	if !ok || got.Outflows[0].Category != "Changed" {
		t.Fatalf("expected latest snapshot, got %+v", got.Outflows[0])
	}
	got, ok = h.Pop()
	if !ok || got.Outflows[0].Category != "Housing" {
		t.Fatalf("snapshot was not a deep copy: %+v", got.Outflows[0])
	}
	if _, ok := h.Pop(); ok {
		t.Fatal("expected empty history")
	}
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	h := NewHistory(2)
	for _, name := range []string{"a", "b", "c"} {
		h.Push(Document{Outflows: []Node{{Category: name}}})
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
	got, _ := h.Pop()
	if got.Outflows[0].Category != "c" {
		t.Fatalf("top = %q", got.Outflows[0].Category)
	}
	got, _ = h.Pop()
	if got.Outflows[0].Category != "b" {
		t.Fatalf("next = %q", got.Outflows[0].Category)
	}
}
