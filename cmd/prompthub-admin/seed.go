package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	pgdb "github.com/alanyang/prompt-hub/internal/adapter/postgres"
	pglocker "github.com/alanyang/prompt-hub/internal/adapter/postgres/locker"
	"github.com/alanyang/prompt-hub/internal/adapter/postgres/seed"
	"github.com/alanyang/prompt-hub/internal/adapter/static"
)

var seedLanguage string

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Upsert catalog prompts from a JSON or YAML file",
	Long: `seed reads a {"prompts": [...]} document and upserts one prompt row per
entry, keyed by slug, together with its translation. Without a file the
catalog bundled into the binary is used. Concurrent runs are serialized
with a Postgres advisory lock.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		source := static.Embedded()
		name := "bundled catalog"
		if len(args) == 1 {
			source = static.File(args[0])
			name = filepath.Base(args[0])
		}
		prompts, err := source.Load(ctx, seedLanguage)
		if err != nil {
			return err
		}

		pool, err := pgdb.Connect(ctx, databaseURL, pgdb.PoolOptions{MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		res, err := seed.New(pool, pglocker.New(pool)).Seed(ctx, prompts, seedLanguage)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}

		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d created, %d updated, %d translations\n",
			name, res.Created, res.Updated, res.Translations)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedLanguage, "language", "en", "translation language to write")
	rootCmd.AddCommand(seedCmd)
}
