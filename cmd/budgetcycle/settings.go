package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"budgetcycle/internal/config"
	"budgetcycle/internal/core"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the period settings",
	}
	cmd.AddCommand(newSettingsShowCmd(opts), newSettingsSetCmd(opts))
	return cmd
}

func newSettingsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the period settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}
			s, err := config.LoadSettings(cfg.SettingsPath, opts.now())
			if err != nil {
				return err
			}
			return printSettings(cmd, cfg.SettingsPath, s, opts.asJSON)
		},
	}
}

func newSettingsSetCmd(opts *rootOptions) *cobra.Command {
	var periodType, anchor string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the period type or anchor date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if periodType == "" && anchor == "" {
				return fmt.Errorf("nothing to set: pass --type and/or --anchor")
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			s, err := config.LoadSettings(cfg.SettingsPath, opts.now())
			if err != nil {
				return err
			}
			if periodType != "" {
				t, err := core.ParsePeriodType(periodType)
				if err != nil {
					return err
				}
				s.Type = t
			}
			if anchor != "" {
				d, err := core.ParseDate(anchor)
				if err != nil {
					return fmt.Errorf("invalid --anchor: %w", err)
				}
				s.AnchorDate = d.ISO()
			}
			if err := config.SaveSettings(cfg.SettingsPath, s); err != nil {
				return err
			}
			logger.Info("Period settings saved", "path", cfg.SettingsPath, "type", s.Type, "anchor_date", s.AnchorDate)
			return printSettings(cmd, cfg.SettingsPath, s, opts.asJSON)
		},
	}
	cmd.Flags().StringVar(&periodType, "type", "", "weekly, biweekly, semimonthly, monthly, annually or custom")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Anchor date (YYYY-MM-DD)")
	return cmd
}

func printSettings(cmd *cobra.Command, path string, s config.Settings, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(out, "  Settings file: %s\n", path)
	fmt.Fprintf(out, "  Period type:   %s\n", s.Type)
	fmt.Fprintf(out, "  Anchor date:   %s\n", s.AnchorDate)
	return nil
}
