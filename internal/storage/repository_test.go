package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
	"budgetcycle/internal/sheets"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if _, err := repo.LoadDocument(ctx, "default"); !errors.Is(err, sheets.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	doc := budget.Document{
		Inflows: []budget.Node{{Category: "Salary", Amount: core.Money{Cents: 250000}, Children: []budget.Node{}}},
		Outflows: []budget.Node{
			{Category: "Housing", Amount: core.Money{Cents: 100000}, Children: []budget.Node{
				{Category: "Rent", Children: []budget.Node{}},
			}},
			{Category: "Coffee", Auto: true, Children: []budget.Node{}},
		},
	}
	if err := repo.SaveDocument(ctx, "default", doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	got, err := repo.LoadDocument(ctx, "default")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(got.Outflows) != 2 || got.Outflows[0].Children[0].Category != "Rent" || !got.Outflows[1].Auto {
		t.Fatalf("unexpected document: %+v", got)
	}
	if got.Inflows[0].Amount.Cents != 250000 {
		t.Fatalf("inflow amount = %d", got.Inflows[0].Amount.Cents)
	}

	doc.Outflows = doc.Outflows[:1]
	if err := repo.SaveDocument(ctx, "default", doc); err != nil {
		t.Fatalf("SaveDocument overwrite: %v", err)
	}
	got, err = repo.LoadDocument(ctx, "default")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(got.Outflows) != 1 {
		t.Fatalf("overwrite not applied: %+v", got.Outflows)
	}
}

func TestAppendAndListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	txns := []core.Transaction{
		{ID: "b", Date: "2025-02-01", Type: core.Expense, Category: "Rent", Amount: core.Money{Cents: 90000}},
		{ID: "a", Date: "2025-01-20", Type: core.Inflow, Category: "Salary", Amount: core.Money{Cents: 300000}},
	}
	for _, tx := range txns {
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction: %v", err)
		}
	}
	bad := core.Transaction{ID: "c", Date: "2025-02-30", Type: core.Expense, Category: "Rent"}
	if err := repo.AppendTransaction(ctx, bad); err == nil {
		t.Fatal("expected invalid date to be rejected")
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].Type != core.Expense || got[1].Amount.Cents != 90000 {
		t.Fatalf("unexpected transaction: %+v", got[1])
	}
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()

	seed := []core.Transaction{
		{ID: "1", Date: "2025-01-10", Type: core.Expense, Category: "Eating Out", Amount: core.Money{Cents: 100}},
		{ID: "2", Date: "2025-01-20", Type: core.Expense, Category: "  eating   out ", Amount: core.Money{Cents: 200}},
		{ID: "3", Date: "2025-02-20", Type: core.Expense, Category: "Eating Out", Amount: core.Money{Cents: 300}},
		{ID: "4", Date: "2025-01-15", Type: core.Inflow, Category: "Eating Out", Amount: core.Money{Cents: 400}},
		{ID: "5", Date: "2025-01-15", Type: core.Expense, Category: "Groceries", Amount: core.Money{Cents: 500}},
	}

	tests := []struct {
		name      string
		start     string
		end       string
		wantCount int64
		renamed   []string
	}{
		{"all time", "", "", 3, []string{"1", "2", "3"}},
		{"period only", "2025-01-15", "2025-02-14", 1, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t)
			for _, tx := range seed {
				if err := repo.AppendTransaction(ctx, tx); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			n, err := repo.RenameCategory(ctx, core.Expense, "Eating out", "Restaurants", tt.start, tt.end)
			if err != nil {
				t.Fatalf("RenameCategory: %v", err)
			}
			if n != tt.wantCount {
				t.Fatalf("renamed %d, want %d", n, tt.wantCount)
			}

			want := make(map[string]bool)
			for _, id := range tt.renamed {
				want[id] = true
			}
			all, err := repo.ListTransactions(ctx)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			for _, tx := range all {
				if got := tx.Category == "Restaurants"; got != want[tx.ID] {
					t.Errorf("transaction %s category %q", tx.ID, tx.Category)
				}
			}
		})
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}
	v, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}
