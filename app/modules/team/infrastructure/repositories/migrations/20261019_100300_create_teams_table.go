package teammigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating teams table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS teams (
				team_name TEXT PRIMARY KEY CHECK (team_name <> 'HIDDEN_IMAGE'),
				created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				last_active TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				members TEXT[] NOT NULL DEFAULT '{}'
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create teams table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping teams table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS teams`); err != nil {
			return fmt.Errorf("failed to drop teams table: %w", err)
		}
		return nil
	})
}
