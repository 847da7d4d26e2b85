package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/querydsl/internal/config"
	"github.com/alfredjeanlab/querydsl/internal/seed"
	"github.com/alfredjeanlab/querydsl/internal/store/sqlstore"
	qdsync "github.com/alfredjeanlab/querydsl/internal/sync"
)

// openStore connects to the configured database and applies migrations.
func openStore(cfg *config.Config) (*sqlstore.SQLStore, error) {
	driver, dsn, err := sqlstore.ParseURL(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return sqlstore.Open(driver, dsn)
}

// seedStore loads the fixture at path (the built-in one when empty). Unless
// force is set, a database that already has members is left alone.
func seedStore(ctx context.Context, logger *slog.Logger, store *sqlstore.SQLStore, path string, force bool) error {
	fixture := seed.Default()
	if path != "" {
		f, err := seed.Load(path)
		if err != nil {
			return err
		}
		fixture = f
	}

	apply := seed.ApplyIfEmpty
	if force {
		apply = seed.Apply
	}
	res, err := apply(ctx, store, fixture)
	if errors.Is(err, seed.ErrNotEmpty) {
		logger.Info("seed skipped, database already has members")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("seeded database", "teams", res.Teams, "members", res.Members)
	return nil
}

var migrateCmd = &cobra.Command{
	Use:               "migrate",
	Short:             "Apply pending database migrations",
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", store.Dialect().Name())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample teams and members into the database",
	Long: `Load a fixture of teams and members. Without --file the built-in fixture
is used: teamA and teamB with member0..member99, aged 0..99, even numbers in
teamA. A database that already has members is skipped unless --force.`,
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger(os.Stderr)

		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = cfg.SeedFile
		}
		force, _ := cmd.Flags().GetBool("force")

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return seedStore(cmd.Context(), logger, store, path, force)
	},
}

var exportCmd = &cobra.Command{
	Use:               "export",
	Short:             "Write all teams and members as JSONL",
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		summary, err := qdsync.ExportJSONL(cmd.Context(), store, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d teams, %d members\n", summary.Teams, summary.Members)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "YAML fixture (default: QD_SEED_FILE or the built-in fixture)")
	seedCmd.Flags().Bool("force", false, "seed even when members already exist")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}
