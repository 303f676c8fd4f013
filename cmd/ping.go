package cmd

import (
	"context"
	"fmt"
	"time"

	"dealscout/internal/redisclient"
	"dealscout/internal/slack"
	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

// pingCmd checks connectivity to Postgres, Redis and Slack.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check Postgres, Redis and Slack connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if pg, err := store.Connect(ctx, cfg.Database.URL()); err != nil {
			fmt.Fprintf(out, "postgres: FAIL (%v)\n", err)
		} else {
			fmt.Fprintln(out, "postgres: ok")
			pg.Close()
		}

		rdb := redisclient.New(cfg.Redis)
		if res, err := rdb.Ping(ctx).Result(); err != nil {
			fmt.Fprintf(out, "redis: FAIL (%v)\n", err)
		} else {
			fmt.Fprintf(out, "redis: %s\n", res)
		}
		_ = rdb.Close()

		if cfg.Slack.BotToken == "" {
			fmt.Fprintln(out, "slack: skipped (no bot token)")
			return nil
		}
		if err := slack.NewBot(cfg.Slack).TestAuth(ctx); err != nil {
			fmt.Fprintf(out, "slack: FAIL (%v)\n", err)
		} else {
			fmt.Fprintln(out, "slack: ok")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
