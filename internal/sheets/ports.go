package sheets

import (
	"context"
	"errors"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
)

// ErrDocumentNotFound is returned by DocumentStore.LoadDocument for an
// unknown id.
var ErrDocumentNotFound = errors.New("budget document not found")

// Ports for outbound adapters.
type (
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) error
	}

	// TransactionRenamer rewrites category text on stored transactions.
	// Empty bounds are open.
	TransactionRenamer interface {
		RenameCategory(ctx context.Context, txType core.TransactionType, oldName, newName, startISO, endISO string) (int64, error)
	}

	// DocumentStore persists budget documents by id.
	DocumentStore interface {
		LoadDocument(ctx context.Context, id string) (budget.Document, error)
		SaveDocument(ctx context.Context, id string, doc budget.Document) error
	}
)
