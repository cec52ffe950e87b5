package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/config"
	"budgetcycle/internal/core"
	"budgetcycle/internal/sheets/memory"
	"budgetcycle/internal/worker"
)

var testNow = func() time.Time { return time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC) }

func testSettings() config.Settings {
	return config.Settings{Type: core.Monthly, AnchorDate: "2025-01-15"}
}

func seedTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Date: "2025-01-20", Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 4000}},
		{ID: "2", Date: "2025-02-01", Type: core.Expense, Category: " food ", Amount: core.Money{Cents: 1000}},
		{ID: "3", Date: "2025-01-31", Type: core.Inflow, Category: "Salary", Amount: core.Money{Cents: 300000}},
		{ID: "4", Date: "2025-03-01", Type: core.Expense, Category: "Travel", Amount: core.Money{Cents: 50000}},
	}
}

func openTestSession(t *testing.T, store *memory.Store, opts ...func(*SessionConfig)) *Session {
	t.Helper()
	w := worker.NewTransactionWorker(store, worker.WithClock(testNow))
	cfg := SessionConfig{
		BudgetID: "test",
		Settings: testSettings(),
		Cascader: w,
		Claimer:  w,
		Now:      testNow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := OpenSession(context.Background(), store, cfg)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	return s
}

func TestOpenSessionAutoPopulatesAndPersists(t *testing.T) {
	store := memory.New(seedTransactions())
	s := openTestSession(t, store)

	if got := s.Window().String(); got != "2025-01-15..2025-02-14" {
		t.Fatalf("window = %s", got)
	}

	doc, err := store.LoadDocument(context.Background(), "test")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Outflows) != 1 || doc.Outflows[0].Category != "Food" || !doc.Outflows[0].Auto {
		t.Errorf("outflows = %+v", doc.Outflows)
	}
	if len(doc.Inflows) != 1 || doc.Inflows[0].Category != "Salary" {
		t.Errorf("inflows = %+v", doc.Inflows)
	}

	rows := s.Rows(budget.Outflows)
	if len(rows) != 1 || rows[0].Actual.Cents != 5000 {
		t.Errorf("rows = %+v", rows)
	}
	sum := s.Summary()
	if sum.NetActual.Cents != 295000 {
		t.Errorf("net actual = %d, want 295000", sum.NetActual.Cents)
	}
}

func TestOpenSessionRejectsBadSettings(t *testing.T) {
	_, err := OpenSession(context.Background(), memory.New(nil), SessionConfig{
		Settings: config.Settings{Type: "fortnightly-ish", AnchorDate: "2025-01-01"},
	})
	if err == nil {
		t.Fatal("expected settings error")
	}
}

func TestNavigateMergesNewWindow(t *testing.T) {
	store := memory.New(seedTransactions())
	s := openTestSession(t, store)

	if err := s.Navigate(context.Background(), 1); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := s.Window().String(); got != "2025-02-15..2025-03-14" {
		t.Fatalf("window = %s", got)
	}
	rows := s.Rows(budget.Outflows)
	if len(rows) != 2 || rows[1].Category != "Travel" || rows[1].Actual.Cents != 50000 {
		t.Errorf("rows = %+v", rows)
	}
	if rows[0].Actual.Cents != 0 {
		t.Errorf("Food actual outside window = %d", rows[0].Actual.Cents)
	}
}

func TestSessionCommandsPersist(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	s := openTestSession(t, store)

	p, err := s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: "Rent", Amount: core.Money{Cents: 90000}})
	if err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if _, err := s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: "Utilities"}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if err := s.Move(ctx, budget.MoveCommand{Section: budget.Outflows, Source: budget.Path{1}, Target: p, Mode: budget.NestUnder}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	doc, _ := store.LoadDocument(ctx, "test")
	if len(doc.Outflows) != 1 || len(doc.Outflows[0].Children) != 1 || doc.Outflows[0].Children[0].Category != "Utilities" {
		t.Fatalf("stored outflows = %+v", doc.Outflows)
	}

	undone, err := s.Undo(ctx)
	if err != nil || !undone {
		t.Fatalf("Undo = %v, %v", undone, err)
	}
	doc, _ = store.LoadDocument(ctx, "test")
	if len(doc.Outflows) != 2 {
		t.Errorf("undo not persisted: %+v", doc.Outflows)
	}

	_, err = s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: " rent "})
	if !errors.Is(err, budget.ErrDuplicateCategory) {
		t.Errorf("duplicate add err = %v", err)
	}
}

func TestSaveRowRenameFollowsTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.New(seedTransactions())
	s := openTestSession(t, store)

	err := s.SaveRow(ctx, budget.Outflows, budget.Path{0}, budget.RowInput{Category: "Groceries", Amount: core.Money{Cents: 6000}}, budget.RenameAll)
	if err != nil {
		t.Fatalf("SaveRow: %v", err)
	}
	rows := s.Rows(budget.Outflows)
	if len(rows) != 1 || rows[0].Category != "Groceries" || rows[0].Actual.Cents != 5000 {
		t.Errorf("rows after rename = %+v", rows)
	}
}

func TestUndoRenameKeepsRenamedSpendVisible(t *testing.T) {
	ctx := context.Background()
	store := memory.New(seedTransactions())
	s := openTestSession(t, store)

	err := s.SaveRow(ctx, budget.Outflows, budget.Path{0}, budget.RowInput{Category: "Groceries", Amount: core.Money{Cents: 6000}}, budget.RenameAll)
	if err != nil {
		t.Fatalf("SaveRow: %v", err)
	}
	undone, err := s.Undo(ctx)
	if err != nil || !undone {
		t.Fatalf("Undo = %v, %v", undone, err)
	}

	rows := s.Rows(budget.Outflows)
	if len(rows) != 2 {
		t.Fatalf("rows after undo = %+v", rows)
	}
	if rows[0].Category != "Food" || rows[0].Actual.Cents != 0 {
		t.Errorf("restored row = %+v", rows[0])
	}
	if !rows[1].Auto || rows[1].Category != "Groceries" || rows[1].Actual.Cents != 5000 {
		t.Errorf("auto row = %+v", rows[1])
	}

	doc, err := store.LoadDocument(ctx, "test")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Outflows) != 2 {
		t.Errorf("persisted outflows = %+v", doc.Outflows)
	}
}

func TestClaimRowBooksTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	s := openTestSession(t, store)

	if _, err := s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: "Gym", Amount: core.Money{Cents: 3500}}); err != nil {
		t.Fatalf("AddRow: %v", err)
	}
	if err := s.ClaimRow(ctx, budget.Outflows, budget.Path{0}, budget.RowInput{Category: "Gym", Amount: core.Money{Cents: 4000}}); err != nil {
		t.Fatalf("ClaimRow: %v", err)
	}
	rows := s.Rows(budget.Outflows)
	if rows[0].Amount.Cents != 4000 || rows[0].Actual.Cents != 4000 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestClaimSubcategoryKeepsSave(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	s := openTestSession(t, store)

	s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: "Home"})
	s.AddRow(ctx, budget.Outflows, budget.RowInput{Category: "Power"})
	if err := s.Move(ctx, budget.MoveCommand{Section: budget.Outflows, Source: budget.Path{1}, Target: budget.Path{0}, Mode: budget.NestUnder}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	err := s.ClaimRow(ctx, budget.Outflows, budget.Path{0, 0}, budget.RowInput{Category: "Electricity"})
	if !errors.Is(err, budget.ErrStructural) {
		t.Fatalf("err = %v, want ErrStructural", err)
	}
	doc, _ := store.LoadDocument(ctx, "test")
	if doc.Outflows[0].Children[0].Category != "Electricity" {
		t.Errorf("save not persisted: %+v", doc.Outflows)
	}
	txns, _ := store.ListTransactions(ctx)
	if len(txns) != 0 {
		t.Errorf("unexpected transactions: %+v", txns)
	}
}

type failingSaveStore struct {
	*memory.Store
}

func (failingSaveStore) SaveDocument(context.Context, string, budget.Document) error {
	return errors.New("disk full")
}

func TestPersistFailureIsReturned(t *testing.T) {
	s, err := OpenSession(context.Background(), failingSaveStore{memory.New(nil)}, SessionConfig{Settings: testSettings(), Now: testNow})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	_, err = s.AddRow(context.Background(), budget.Inflows, budget.RowInput{Category: "Pay"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("err = %v", err)
	}
}
