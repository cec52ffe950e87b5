package budget

import (
	"testing"

	"budgetcycle/internal/core"
)

func TestAutoPopulate(t *testing.T) {
	doc := sampleDoc()
	txns := []core.Transaction{
		txn("1", "2025-01-16", core.Expense, "  Coffee ", 300),
		txn("2", "2025-01-17", core.Expense, "rent", 90000),      // child name already budgeted
		txn("3", "2025-01-18", core.Expense, "COFFEE", 250),      // same name again
		txn("4", "2025-01-18", core.Expense, "Gym", 4000),
		txn("5", "2025-03-01", core.Expense, "Travel", 10000),    // outside window
		txn("6", "2025-01-19", core.Inflow, "Side  gig", 20000),
		txn("7", "2025-01-19", core.Inflow, "Salary", 20000),
		txn("8", "2025-01-19", core.Expense, " ", 20000),
	}
	out, added := AutoPopulate(doc, txns, "2025-01-15", "2025-02-14")
	if added != 3 {
		t.Fatalf("added = %d, want 3", added)
	}
	if n := len(out.Outflows); n != 5 {
		t.Fatalf("outflows len = %d, want 5", n)
	}
	coffee, gym := out.Outflows[3], out.Outflows[4]
	if coffee.Category != "Coffee" || !coffee.Auto || coffee.Amount.Cents != 0 || coffee.Children == nil {
		t.Fatalf("unexpected coffee row: %+v", coffee)
	}
	if gym.Category != "Gym" {
		t.Fatalf("expected first-seen order, got %+v", gym)
	}
	if len(out.Inflows) != 2 || out.Inflows[1].Category != "Side  gig" {
		t.Fatalf("unexpected inflows: %+v", out.Inflows)
	}
	if len(doc.Outflows) != 3 {
		t.Fatal("AutoPopulate mutated its input")
	}

	again, added := AutoPopulate(out, txns, "2025-01-15", "2025-02-14")
	if added != 0 || len(again.Outflows) != 5 {
		t.Fatalf("second pass should add nothing, added %d", added)
	}
}
