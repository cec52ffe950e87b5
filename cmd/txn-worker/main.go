package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetcycle/internal/amqp"
	"budgetcycle/internal/backend"
	"budgetcycle/internal/cache"
	"budgetcycle/internal/cli"
	"budgetcycle/internal/config"
	"budgetcycle/internal/log"
	"budgetcycle/internal/sheets/google"
	"budgetcycle/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)
	logger.Info("Starting txn-worker", log.FieldBackend, cfg.DataBackend)

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required", errors.New("txn-worker consumes from AMQP"))
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The worker applies requests itself; it must not publish them again.
	bcfg.AMQPURL = ""

	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer res.Close()

	caches := cache.NewManager()
	for _, c := range res.Caches {
		caches.Register(c)
	}

	var opts []worker.Option
	if bcfg.Type != backend.SheetsBackend && cfg.GoogleSpreadsheetID != "" {
		mirror, err := google.New(ctx, bcfg.SheetsConfig())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror, continuing without it", log.FieldError, err)
		} else {
			caches.Register(mirror.Cache())
			opts = append(opts, worker.WithMirror(mirror))
			logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	}
	w := worker.NewTransactionWorker(res.Backend, opts...)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, w.Handlers())
	})
	g.Go(func() error {
		caches.Run(gctx, sweepInterval(cfg.SheetsCacheTTL))
		return nil
	})
	return g.Wait()
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return ttl
}
