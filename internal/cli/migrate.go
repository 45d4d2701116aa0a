package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quizlens/internal/config"
	"quizlens/internal/infra/csvstore"
	pgcatalog "quizlens/internal/infra/postgres"
	pgmigrations "quizlens/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and can seed the topics table
// from the CSV catalog.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var importCatalog bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			if importCatalog {
				return importCatalogCSV(cmd.Context(), cfg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&importCatalog, "import-catalog", false, "copy topics from the CSV catalog into Postgres")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return nil
}

func importCatalogCSV(ctx context.Context, cfg config.Config) error {
	topics, err := csvstore.NewCatalogLoader(cfg.Catalog.Path).LoadTopics(ctx)
	if err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	added, err := pgcatalog.NewCatalogLoader(pool).ImportTopics(ctx, topics)
	if err != nil {
		return err
	}
	log.Printf("imported %d of %d topics from %s", added, len(topics), cfg.Catalog.Path)
	return nil
}
