// Package services ties the budget editor to storage: a Session owns one
// budget document for one period window and persists it after every
// applied command.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/config"
	"budgetcycle/internal/core"
	"budgetcycle/internal/period"
	"budgetcycle/internal/sheets"
)

// Store is what a Session reads and writes.
type Store interface {
	sheets.TransactionLister
	sheets.DocumentStore
}

type SessionConfig struct {
	BudgetID     string
	Settings     config.Settings
	// Offset counts whole periods from the one containing today.
	Offset       int
	HistoryLimit int
	Cascader     budget.RenameCascader
	Claimer      budget.Claimer
	Now          func() time.Time
}

type Session struct {
	store    Store
	id       string
	settings config.Settings
	offset   int
	now      func() time.Time

	window period.Window
	editor *budget.Editor
	txns   []core.Transaction
}

// OpenSession loads the document (an unknown id starts empty), resolves
// the active window and merges auto rows for unbudgeted categories.
func OpenSession(ctx context.Context, store Store, cfg SessionConfig) (*Session, error) {
	if cfg.BudgetID == "" {
		cfg.BudgetID = "default"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid period settings: %w", err)
	}
	cfg.Settings.Type, _ = core.ParsePeriodType(string(cfg.Settings.Type))

	doc, err := store.LoadDocument(ctx, cfg.BudgetID)
	if errors.Is(err, sheets.ErrDocumentNotFound) {
		slog.InfoContext(ctx, "Budget document not found, starting empty", "budget_id", cfg.BudgetID)
		doc = budget.Document{}
	} else if err != nil {
		return nil, fmt.Errorf("load budget %s: %w", cfg.BudgetID, err)
	}

	s := &Session{
		store:    store,
		id:       cfg.BudgetID,
		settings: cfg.Settings,
		offset:   cfg.Offset,
		now:      cfg.Now,
	}
	s.window = s.resolveWindow()
	s.editor = budget.NewEditor(doc, budget.NewHistory(cfg.HistoryLimit),
		budget.WithRenameCascader(cfg.Cascader),
		budget.WithClaimer(cfg.Claimer),
		budget.WithWindow(s.window.StartISO(), s.window.EndISO()))

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) resolveWindow() period.Window {
	anchor, _ := s.settings.Anchor()
	return period.Resolve(s.settings.Type, anchor, core.DateOf(s.now()), s.offset)
}

func (s *Session) Window() period.Window { return s.window }

func (s *Session) Settings() config.Settings { return s.settings }

func (s *Session) Document() budget.Document { return s.editor.Document() }

func (s *Session) CanUndo() bool { return s.editor.CanUndo() }

// Rows returns the display rows of section with actuals for the window.
func (s *Session) Rows(section budget.Section) []budget.Row {
	doc := s.editor.Document()
	actuals := budget.CollectActuals(s.txns, section, s.window.StartISO(), s.window.EndISO())
	return budget.Rows(doc.Nodes(section), actuals)
}

func (s *Session) Summary() core.Summary {
	return budget.Summarize(s.editor.Document(), s.txns, s.window.StartISO(), s.window.EndISO())
}

// Navigate moves the window to offset periods from the current one.
func (s *Session) Navigate(ctx context.Context, offset int) error {
	s.offset = offset
	s.window = s.resolveWindow()
	s.editor.SetWindow(s.window.StartISO(), s.window.EndISO())
	slog.DebugContext(ctx, "Period window changed", "window", s.window.String(), "offset", offset)
	return s.Refresh(ctx)
}

// Refresh reloads transactions and persists any auto rows they add.
func (s *Session) Refresh(ctx context.Context) error {
	txns, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	s.txns = txns

	if added := s.editor.AutoPopulate(ctx, txns); added > 0 {
		slog.InfoContext(ctx, "Auto rows merged", "count", added, "window", s.window.String())
		return s.persist(ctx)
	}
	return nil
}

func (s *Session) AddRow(ctx context.Context, section budget.Section, in budget.RowInput) (budget.Path, error) {
	p, err := s.editor.AddRow(ctx, section, in)
	if err != nil {
		return nil, err
	}
	return p, s.persist(ctx)
}

// SaveRow persists the edit and, when a rename reached the transactions,
// reloads them so actuals follow the new name.
func (s *Session) SaveRow(ctx context.Context, section budget.Section, p budget.Path, in budget.RowInput, scope budget.RenameScope) error {
	if err := s.editor.SaveRow(ctx, section, p, in, scope); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if scope == budget.RenameAll || scope == budget.RenamePeriod {
		s.refreshAfterCollaborator(ctx)
	}
	return nil
}

func (s *Session) DeleteRow(ctx context.Context, section budget.Section, p budget.Path) (budget.Node, error) {
	removed, err := s.editor.DeleteRow(ctx, section, p)
	if err != nil {
		return budget.Node{}, err
	}
	return removed, s.persist(ctx)
}

// ClaimRow keeps the save even when the claim itself is rejected.
func (s *Session) ClaimRow(ctx context.Context, section budget.Section, p budget.Path, in budget.RowInput) error {
	claimErr := s.editor.ClaimRow(ctx, section, p, in)
	if claimErr != nil && !errors.Is(claimErr, budget.ErrStructural) {
		return claimErr
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if claimErr == nil {
		s.refreshAfterCollaborator(ctx)
	}
	return claimErr
}

func (s *Session) Move(ctx context.Context, cmd budget.MoveCommand) error {
	if err := s.editor.Move(ctx, cmd); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Undo restores the previous document and reports whether there was one.
// Transactions are not rolled back, so auto rows are merged again for
// categories the restored document no longer covers.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	if !s.editor.Undo() {
		return false, nil
	}
	slog.InfoContext(ctx, "Budget change undone", "budget_id", s.id)
	if added := s.editor.AutoPopulate(ctx, s.txns); added > 0 {
		slog.InfoContext(ctx, "Auto rows merged", "count", added, "window", s.window.String())
	}
	return true, s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	if err := s.store.SaveDocument(ctx, s.id, s.editor.Document()); err != nil {
		return fmt.Errorf("save budget %s: %w", s.id, err)
	}
	return nil
}

// refreshAfterCollaborator picks up transactions written by an in-process
// collaborator. Queued collaborators land later; the next load sees them.
func (s *Session) refreshAfterCollaborator(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reload transactions", "error", err)
	}
}
