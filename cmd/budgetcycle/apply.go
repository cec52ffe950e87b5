package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetcycle/internal/log"
	"budgetcycle/internal/services"
)

func newApplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <script.json>",
		Short: "Run a batch of editor commands, undo entries included",
		Long: `Run a JSON batch of editor commands against the active period:

  {"commands": [
    {"op": "add", "section": "outflows", "category": "Rent", "amount": 900},
    {"op": "move", "section": "outflows", "path": [1], "target": [0], "mode": "nest-under"},
    {"op": "undo"}
  ]}

Commands with stale paths are skipped. The document is saved after every
applied command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer f.Close()
			script, err := services.ParseScript(f)
			if err != nil {
				return err
			}

			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				results, err := s.Apply(ctx, script)
				printResults(cmd.OutOrStdout(), results)
				if err != nil {
					return err
				}
				log.FromContext(ctx).Info("Script applied", log.FieldCount, len(results))
				return nil
			})
		},
	}
}
