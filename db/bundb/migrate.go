package bundb

import (
	"context"
	"fmt"
	"log/slog"

	imagesmigrations "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories/migrations"
	leaderboardmigrations "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories/migrations"
	statemigrations "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories/migrations"
	teammigrations "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations pairs a module name with its migration registry.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// OrderedMigrations lists every module's migrations in the order they run.
func OrderedMigrations() []ModuleMigrations {
	return []ModuleMigrations{
		{"state", statemigrations.Migrations},
		{"team", teammigrations.Migrations},
		{"images", imagesmigrations.Migrations},
		{"leaderboard", leaderboardmigrations.Migrations},
	}
}

// Migrators builds one migrator per module. Each module keeps its own
// bookkeeping tables so groups roll back independently.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	out := make(map[string]*migrate.Migrator)
	for _, m := range OrderedMigrations() {
		out[m.Name] = newMigrator(db, m)
	}
	return out
}

func newMigrator(db *bun.DB, m ModuleMigrations) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName("bun_migrations_"+m.Name),
		migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
	)
}

// MigrateAll initializes the bookkeeping tables and applies every pending
// migration in order.
func MigrateAll(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, m := range OrderedMigrations() {
		migrator := newMigrator(db, m)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", m.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations to run", "module", m.Name)
		} else {
			logger.InfoContext(ctx, "Migrated module", "module", m.Name, "group", group.String())
		}
	}
	return nil
}
