package backend

import (
	"context"
	"time"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/cache"
	"budgetcycle/internal/sheets"
)

// Backend is everything a budget session needs from storage.
type Backend interface {
	sheets.TransactionLister
	sheets.TransactionWriter
	sheets.TransactionRenamer
	sheets.DocumentStore
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult bundles a backend with the collaborators that receive
// rename cascades and claims.
type BackendResult struct {
	Backend  Backend
	Cascader budget.RenameCascader
	Claimer  budget.Claimer
	// Caches that want periodic expiry sweeps.
	Caches   []cache.Cleaner
	Cleanup  CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Collaborator queue, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleBudgetSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SheetsCacheTTL           time.Duration

	// Memory backend specific
	DataDirectory string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
