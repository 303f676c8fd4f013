package cmd

import (
	"context"
	"fmt"
	"time"

	"dealscout/internal/store"

	"github.com/spf13/cobra"
)

// initdbCmd applies the schema. Idempotent.
var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create database tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		pg, err := store.Connect(ctx, cfg.Database.URL())
		if err != nil {
			return err
		}
		defer pg.Close()

		if err := pg.InitSchema(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
