package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetcycle/internal/amqp"
	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
)

// TransactionStore is the system of record for transactions.
type TransactionStore interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
	RenameCategory(ctx context.Context, txType core.TransactionType, oldName, newName, startISO, endISO string) (int64, error)
}

// TransactionWriter receives a copy of every claimed transaction, such as a
// spreadsheet mirror.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
}

// TransactionWorker applies rename cascades and claims to the transaction
// store. Called directly it implements budget.RenameCascader and
// budget.Claimer; behind a queue it serves amqp.Handlers.
type TransactionWorker struct {
	store  TransactionStore
	mirror TransactionWriter
	now    func() time.Time
}

type Option func(*TransactionWorker)

func WithMirror(w TransactionWriter) Option {
	return func(tw *TransactionWorker) { tw.mirror = w }
}

// WithClock overrides the clock used to date claimed transactions.
func WithClock(now func() time.Time) Option {
	return func(tw *TransactionWorker) { tw.now = now }
}

func NewTransactionWorker(store TransactionStore, opts ...Option) *TransactionWorker {
	w := &TransactionWorker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *TransactionWorker) Handlers() amqp.Handlers {
	return amqp.Handlers{
		OnRename: w.CascadeRename,
		OnClaim:  w.Claim,
	}
}

// CascadeRename rewrites the category of matching transactions. A period
// scope without a window is skipped rather than widened to all time.
func (w *TransactionWorker) CascadeRename(ctx context.Context, req budget.RenameRequest) error {
	var start, end string
	switch req.Scope {
	case budget.RenameAll:
	case budget.RenamePeriod:
		if req.StartISO == "" && req.EndISO == "" {
			slog.WarnContext(ctx, "Period rename without window, skipping",
				"old_name", req.OldName, "new_name", req.NewName)
			return nil
		}
		start, end = req.StartISO, req.EndISO
	default:
		slog.DebugContext(ctx, "Rename scope excludes transactions", "scope", req.Scope)
		return nil
	}

	n, err := w.store.RenameCategory(ctx, req.Section.TransactionType(), req.OldName, req.NewName, start, end)
	if err != nil {
		return fmt.Errorf("rename %q to %q: %w", req.OldName, req.NewName, err)
	}

	slog.InfoContext(ctx, "Rename cascade applied",
		"section", req.Section,
		"old_name", req.OldName,
		"new_name", req.NewName,
		"scope", req.Scope,
		"count", n)
	return nil
}

// Claim books the requested amount as a transaction dated today.
func (w *TransactionWorker) Claim(ctx context.Context, req budget.ClaimRequest) error {
	t := core.Transaction{
		ID:       uuid.NewString(),
		Date:     core.DateOf(w.now()).ISO(),
		Type:     req.Section.TransactionType(),
		Category: req.Category,
		Amount:   req.Amount,
	}
	if err := w.store.AppendTransaction(ctx, t); err != nil {
		return fmt.Errorf("append claimed transaction: %w", err)
	}

	slog.InfoContext(ctx, "Claim recorded",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount.String(),
		"date", t.Date)

	if w.mirror != nil {
		// the store already has it; a mirror failure must not trigger a retry
		if err := w.mirror.AppendTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror claimed transaction", "id", t.ID, "error", err)
		}
	}
	return nil
}
