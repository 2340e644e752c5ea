package startup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/migrations"
)

// RunMigrations применяет встроенные SQL-миграции по порядку имён (001, 002, ...).
// Применённые версии фиксируются в schema_migrations и пропускаются.
func RunMigrations(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("migrations: create schema_migrations: %w", err)
	}

	names, err := migrations.Files.ReadDir(".")
	if err != nil {
		return fmt.Errorf("migrations: read dir: %w", err)
	}
	var files []string
	for _, e := range names {
		files = append(files, e.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("migrations: check %s: %w", name, err)
		}
		if exists {
			continue
		}
		data, err := migrations.Files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("migrations: apply %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("migrations: record %s: %w", name, err)
		}
		logger.Infof("migration applied: %s", name)
	}
	return nil
}
