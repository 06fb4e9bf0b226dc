package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgdb "github.com/alanyang/prompt-hub/internal/adapter/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the embedded schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		up := args[0] == "up"
		if err := pgdb.Migrate(databaseURL, up); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
