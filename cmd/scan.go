package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"dealscout/internal/runner"
	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

var (
	scanSubreddits []string
	scanMinScore   float64
	scanMaxNotify  int
	scanDryRun     bool
	scanHot        bool
)

// scanCmd runs one pipeline pass and prints a JSON summary.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan pass over the configured subreddits",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if scanHot {
			// Hot mode is a read-only probe of the "hot" listings;
			// nothing is persisted or notified.
			monitor, err := newMonitor(cfg)
			if err != nil {
				return err
			}
			subs := scanSubreddits
			if len(subs) == 0 {
				subs = cfg.Scanner.Subreddits
			}
			limit := scanMaxNotify
			if limit <= 0 {
				limit = cfg.Scanner.MaxNotifications
			}
			opps := monitor.HotOpportunities(ctx, subs, limit)
			out, err := json.MarshalIndent(opps, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		req := runnerRequest(cfg, scanSubreddits, scanMinScore, scanMaxNotify)

		var r *runner.Runner
		if scanDryRun {
			// Dry run: in-memory store, no Slack, no AI spend.
			monitor, err := newMonitor(cfg)
			if err != nil {
				return err
			}
			r = runner.New(monitor, store.NewMemory())
			req.SkipEnrichment = true
			req.SkipNotify = true
			req.ExpireAfter = 0
		} else {
			var pg *store.Postgres
			var err error
			r, pg, err = newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer pg.Close()
		}

		sum, err := r.Run(ctx, req)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanSubreddits, "subreddits", nil, "subreddits to scan (default: configured list)")
	scanCmd.Flags().Float64Var(&scanMinScore, "min-score", 0, "minimum relevance score (default: configured)")
	scanCmd.Flags().IntVar(&scanMaxNotify, "max-notifications", 0, "notification budget per run (default: configured)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "scan and score without persisting or notifying")
	scanCmd.Flags().BoolVar(&scanHot, "hot", false, "probe the hot listings and print matches without persisting")
	rootCmd.AddCommand(scanCmd)
}
