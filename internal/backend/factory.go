package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetcycle/internal/amqp"
	"budgetcycle/internal/cache"
	"budgetcycle/internal/sheets/google"
	"budgetcycle/internal/sheets/memory"
	"budgetcycle/internal/storage"
	"budgetcycle/internal/worker"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the configured store and attaches collaborators.
// Cascades and claims go through AMQP when a URL is configured and the
// broker is reachable; otherwise a TransactionWorker applies them directly
// to the same store.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachCollaborators(result, config)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Backend: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, config.SheetsConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"transactions_sheet", config.GoogleSheetName,
		"budget_sheet", config.GoogleBudgetSheetName)
	return &BackendResult{Backend: cli, Caches: []cache.Cleaner{cli.Cache()}}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &BackendResult{Backend: store}, nil
}

func (f *DefaultFactory) attachCollaborators(result *BackendResult, config Config) {
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err == nil {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Cascader = client
			result.Claimer = client
			result.Cleanup = chainCleanup(client.Close, result.Cleanup)
			return
		}
		f.logger.Warn("Failed to initialize AMQP client, applying requests in-process", "error", err)
	}

	w := worker.NewTransactionWorker(result.Backend)
	result.Cascader = w
	result.Claimer = w
}

// chainCleanup runs every non-nil cleanup and joins their errors.
func chainCleanup(fns ...CleanupFunc) CleanupFunc {
	return func() error {
		var errs []error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
