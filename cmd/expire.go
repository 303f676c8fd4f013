package cmd

import (
	"context"
	"fmt"
	"time"

	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

var expireOlderThanHours int

// expireCmd sweeps stale pending opportunities to expired.
var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire pending opportunities older than the cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		hours := expireOlderThanHours
		if hours <= 0 {
			hours = cfg.Scanner.ExpireAfterHours
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pg, err := store.Connect(ctx, cfg.Database.URL())
		if err != nil {
			return err
		}
		defer pg.Close()

		n, err := pg.ExpireStale(ctx, time.Duration(hours)*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d opportunities older than %dh\n", n, hours)
		return nil
	},
}

func init() {
	expireCmd.Flags().IntVar(&expireOlderThanHours, "hours", 0, "age cutoff in hours (default: configured)")
	rootCmd.AddCommand(expireCmd)
}
