package cmd

import (
	"context"
	"fmt"
	"time"

	"dealscout/internal/slack"
	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

// digestCmd posts a pipeline summary to Slack: weekly counters plus
// the highest-scoring pending opportunities.
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Post a digest of recent opportunities to Slack",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Slack.BotToken == "" {
			return fmt.Errorf("slack bot token is required for digest")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		pg, err := store.Connect(ctx, cfg.Database.URL())
		if err != nil {
			return err
		}
		defer pg.Close()

		st, err := pg.Stats(ctx)
		if err != nil {
			return err
		}
		top, err := pg.GetPending(ctx, 5)
		if err != nil {
			return err
		}

		bot := slack.NewBot(cfg.Slack)
		ts, err := bot.PostDigest(ctx, slack.DigestStats{
			Total:    st.Total,
			Pending:  st.Pending,
			AvgScore: st.AvgRelevanceScore,
		}, top)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "digest posted (ts %s)\n", ts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}
