// Command prompthub-admin prepares and inspects the Postgres catalog database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alanyang/prompt-hub/internal/config"
	"github.com/alanyang/prompt-hub/internal/logging"
)

var (
	databaseURL string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "prompthub-admin",
	Short: "Manage the prompt-hub catalog database",
	Long: `prompthub-admin applies the schema and row-level security policies,
seeds the prompt catalog from a JSON or YAML file, and checks that the
server role can read and write the tables it needs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if databaseURL == "" {
			return fmt.Errorf("database url required: set DATABASE_URL or pass --database-url")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (default $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Load()
	databaseURL = cfg.DatabaseURL

	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		closer.Close()
		os.Exit(1)
	}
}
