package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetcycle/internal/budget"
	"budgetcycle/internal/core"
	"budgetcycle/internal/log"
	"budgetcycle/internal/services"
)

func newPeriodCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "period",
		Short: "Show the active period window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(_ context.Context, s *services.Session) error {
				return printPeriod(cmd.OutOrStdout(), s, opts.offset, opts.asJSON)
			})
		},
	}
}

func newRowsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rows [inflows|outflows]",
		Short: "List budget rows with actuals for the active period",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := budget.Sections()
			if len(args) == 1 {
				s, err := budget.ParseSection(args[0])
				if err != nil {
					return err
				}
				sections = []budget.Section{s}
			}
			return withSession(cmd, opts, func(_ context.Context, s *services.Session) error {
				return printRows(cmd.OutOrStdout(), s, sections, opts.asJSON)
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <section> <category> [amount]",
		Short: "Append a top-level row",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := budget.ParseSection(args[0])
			if err != nil {
				return err
			}
			in, err := rowInput(args[1:])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				p, err := s.AddRow(ctx, section, in)
				if err != nil {
					return reportRejection(ctx, cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q at %s\n", section, in.Category, p)
				return nil
			})
		},
	}
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var rename string
	cmd := &cobra.Command{
		Use:   "save <section> <path> <category> [amount]",
		Short: "Update a row's category and amount",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, p, err := sectionAndPath(args[0], args[1])
			if err != nil {
				return err
			}
			in, err := rowInput(args[2:])
			if err != nil {
				return err
			}
			scope := budget.RenameScope(rename)
			if !scope.IsValid() {
				return fmt.Errorf("invalid --rename %q (none, all or period)", rename)
			}
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				if err := s.SaveRow(ctx, section, p, in, scope); err != nil {
					return reportRejection(ctx, cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s as %q\n", section, p, in.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rename, "rename", string(budget.RenameNone), "Rename matching transactions: none, all or period")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <section> <path>",
		Short: "Remove a row (a top-level row takes its subcategories with it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, p, err := sectionAndPath(args[0], args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				removed, err := s.DeleteRow(ctx, section, p)
				if err != nil {
					return reportRejection(ctx, cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%d subcategories)\n", removed.Category, len(removed.Children))
				return nil
			})
		},
	}
}

func newClaimCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <section> <path> <category> [amount]",
		Short: "Save a top-level row and book its amount as a transaction",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, p, err := sectionAndPath(args[0], args[1])
			if err != nil {
				return err
			}
			in, err := rowInput(args[2:])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				if err := s.ClaimRow(ctx, section, p, in); err != nil {
					return reportRejection(ctx, cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Claimed %s for %q\n", in.Amount, in.Category)
				return nil
			})
		},
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "move <section> <source> <target>",
		Short: "Reorder a row or nest it under a top-level row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, src, err := sectionAndPath(args[0], args[1])
			if err != nil {
				return err
			}
			dst, err := budget.ParsePath(args[2])
			if err != nil {
				return err
			}
			m := budget.MoveMode(mode)
			switch m {
			case budget.InsertAbove, budget.InsertBelow, budget.NestUnder:
			default:
				return fmt.Errorf("invalid --mode %q", mode)
			}
			return withSession(cmd, opts, func(ctx context.Context, s *services.Session) error {
				err := s.Move(ctx, budget.MoveCommand{Section: section, Source: src, Target: dst, Mode: m})
				if err != nil {
					return reportRejection(ctx, cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s %s (%s %s)\n", section, src, m, dst)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(budget.InsertBelow), "insert-above, insert-below or nest-under")
	return cmd
}

// reportRejection turns silent rejections into a notice and passes other
// errors through.
func reportRejection(ctx context.Context, cmd *cobra.Command, err error) error {
	if budget.IsNoop(err) {
		log.FromContext(ctx).Warn("Command rejected", log.FieldError, err)
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing changed: %v\n", err)
		return nil
	}
	return err
}

func sectionAndPath(section, path string) (budget.Section, budget.Path, error) {
	s, err := budget.ParseSection(section)
	if err != nil {
		return "", nil, err
	}
	p, err := budget.ParsePath(path)
	if err != nil {
		return "", nil, err
	}
	return s, p, nil
}

// rowInput reads "<category> [amount]".
func rowInput(args []string) (budget.RowInput, error) {
	in := budget.RowInput{Category: args[0]}
	if len(args) > 1 {
		m, err := core.ParseMoney(args[1])
		if err != nil {
			return budget.RowInput{}, fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		in.Amount = m
	}
	return in, nil
}
