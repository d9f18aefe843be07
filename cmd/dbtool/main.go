// Command dbtool prepares the PostgreSQL database: schema creation and
// store/band seeding.
package main

import (
	"context"
	"database/sql"
	"errors"
	"freight-service/internal/adapters/repositories"
	"freight-service/internal/platform/db"
	"freight-service/internal/platform/logger"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Setup(os.Getenv("ENVIRONMENT"))
	ctx := context.Background()

	err := newRootCommand().ExecuteContext(ctx)
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Database schema and seed tool",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL (defaults to $DATABASE_URL)")

	withDB := func(fn func(ctx context.Context, conn *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(databaseURL) == "" {
				return errors.New("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			conn, err := db.Open(ctx, databaseURL, db.DefaultOptions())
			if err != nil {
				logger.Error(ctx, "could not open database", zap.Error(err))
				return err
			}
			defer conn.Close()
			return fn(ctx, conn)
		}
	}

	root.AddCommand(initCommand(withDB), seedCommand(withDB))
	return root
}

type dbRunner func(fn func(ctx context.Context, conn *sql.DB) error) func(*cobra.Command, []string) error

func initCommand(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, conn *sql.DB) error {
			logger.Info(ctx, "initializing database schema...")
			if err := repositories.InitSchema(ctx, conn); err != nil {
				logger.Error(ctx, "schema initialization failed", zap.Error(err))
				return err
			}
			logger.Info(ctx, "schema ready")
			return nil
		}),
	}
}

func seedCommand(withDB dbRunner) *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load stores and delivery bands from a JSON file",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, conn *sql.DB) error {
			if err := repositories.InitSchema(ctx, conn); err != nil {
				logger.Error(ctx, "schema initialization failed", zap.Error(err))
				return err
			}

			logger.Info(ctx, "seeding database...", zap.String("path", seedPath))
			if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
				logger.Error(ctx, "seeding failed", zap.Error(err))
				return err
			}
			logger.Info(ctx, "seeding complete")
			return nil
		}),
	}

	defaultPath := os.Getenv("SEED_PATH")
	if defaultPath == "" {
		defaultPath = "data/seeds/stores.json"
	}
	cmd.Flags().StringVar(&seedPath, "file", defaultPath, "Seed file path (defaults to $SEED_PATH)")
	return cmd
}
