package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

var (
	respondText      string
	respondCommentID string
	respondPostedBy  string
)

// respondCmd records an outreach reply and freezes the opportunity as
// responded.
var respondCmd = &cobra.Command{
	Use:   "respond <opportunity-id>",
	Short: "Record a posted reply and mark the opportunity responded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid opportunity id %q", args[0])
		}
		if respondText == "" {
			return fmt.Errorf("--text is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pg, err := store.Connect(ctx, cfg.Database.URL())
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.MarkResponded(ctx, id, respondText, respondCommentID, respondPostedBy); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "opportunity %d marked responded\n", id)
		return nil
	},
}

func init() {
	respondCmd.Flags().StringVar(&respondText, "text", "", "the reply text that was posted")
	respondCmd.Flags().StringVar(&respondCommentID, "comment-id", "", "reddit comment id of the reply")
	respondCmd.Flags().StringVar(&respondPostedBy, "by", "", "who posted the reply")
	rootCmd.AddCommand(respondCmd)
}
