package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

// statsCmd prints a seven-day opportunity summary as JSON.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print opportunity statistics for the last 7 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
