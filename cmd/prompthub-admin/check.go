package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pgdb "github.com/alanyang/prompt-hub/internal/adapter/postgres"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report missing tables and whether row-level security allows writes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		pool, err := pgdb.Connect(ctx, databaseURL, pgdb.PoolOptions{MaxConns: 1})
		if err != nil {
			return err
		}
		defer pool.Close()

		h, err := pgdb.Check(ctx, pool)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(h)
		}
		printHealth(cmd.OutOrStdout(), h)
		if !healthy(h) {
			return fmt.Errorf("database is not ready; run `prompthub-admin migrate up`")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func healthy(h pgdb.Health) bool {
	for _, ok := range h.Tables {
		if !ok {
			return false
		}
	}
	return h.WritesAllowed
}

func printHealth(w io.Writer, h pgdb.Health) {
	for _, table := range pgdb.Tables {
		status := "missing"
		if h.Tables[table] {
			status = "ok"
		}
		fmt.Fprintf(w, "table %-22s %s\n", table, status)
	}
	if h.WritesAllowed {
		fmt.Fprintln(w, "writes                     allowed")
		return
	}
	fmt.Fprintln(w, "writes                     blocked")
	if h.WriteError != "" {
		fmt.Fprintf(w, "  %s\n", h.WriteError)
	}
}
