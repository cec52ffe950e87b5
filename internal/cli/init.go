// Package cli holds the process bootstrap shared by cmd/budgetcycle and
// cmd/txn-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetcycle/internal/config"
	"budgetcycle/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default. Logs go to w so command output on stdout stays clean.
func SetupLogger(cfg *config.Config, component string, w io.Writer) *log.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Component: component, Output: w})
	if err != nil {
		logger.Warn("Unknown log level, using info", "value", cfg.LogLevel)
	}
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads the environment configuration and validates
// it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM, or when the returned
// cancel func is called.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
