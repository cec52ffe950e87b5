package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"budgetcycle/internal/backend"
	"budgetcycle/internal/cli"
	"budgetcycle/internal/config"
	"budgetcycle/internal/log"
	"budgetcycle/internal/services"
)

// maxOffset bounds --offset; windows are stepped one period at a time.
const maxOffset = 10000

type rootOptions struct {
	offset   int
	budgetID string
	asJSON   bool
	now      func() time.Time
}

func newRootCmd() *cobra.Command {
	return newRootCmdAt(time.Now)
}

// newRootCmdAt builds the command tree with a fixed clock for "today".
func newRootCmdAt(now func() time.Time) *cobra.Command {
	opts := &rootOptions{now: now}

	root := &cobra.Command{
		Use:          "budgetcycle",
		Short:        "Period-based budget planner",
		Long:         "Plan inflows and outflows per budget period and compare them with recorded transactions.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				return printOverview(cmd.OutOrStdout(), s, opts.offset, opts.asJSON)
			})
		},
	}

	root.PersistentFlags().IntVarP(&opts.offset, "offset", "o", 0, "Periods from the current one (negative = past)")
	root.PersistentFlags().StringVarP(&opts.budgetID, "budget", "b", "", "Budget document id (default $BUDGET_ID)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newPeriodCmd(opts),
		newRowsCmd(opts),
		newAddCmd(opts),
		newSaveCmd(opts),
		newDeleteCmd(opts),
		newClaimCmd(opts),
		newMoveCmd(opts),
		newApplyCmd(opts),
		newSettingsCmd(opts),
	)
	return root
}

// bootstrap loads .env, config and the logger. Logs go to stderr.
func bootstrap() (*config.Config, *log.Logger, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, cli.SetupLogger(cfg, log.ComponentCLI, os.Stderr), nil
}

// withSession opens the configured backend and a session on it, runs fn
// and releases everything afterwards.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, s *services.Session) error) error {
	if opts.offset > maxOffset || opts.offset < -maxOffset {
		return fmt.Errorf("offset %d out of range (max %d periods either way)", opts.offset, maxOffset)
	}
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := cli.SignalContext(cmd.Context(), logger)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	settings, err := config.LoadSettings(cfg.SettingsPath, opts.now())
	if err != nil {
		return err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	budgetID := cfg.BudgetID
	if opts.budgetID != "" {
		budgetID = opts.budgetID
	}
	s, err := services.OpenSession(ctx, res.Backend, services.SessionConfig{
		BudgetID:     budgetID,
		Settings:     settings,
		Offset:       opts.offset,
		HistoryLimit: cfg.HistoryLimit,
		Cascader:     res.Cascader,
		Claimer:      res.Claimer,
		Now:          opts.now,
	})
	if err != nil {
		return err
	}

	logger.Debug("Session opened",
		log.FieldBudgetID, budgetID,
		log.FieldBackend, cfg.DataBackend,
		log.FieldWindow, s.Window().String())
	return fn(ctx, s)
}
