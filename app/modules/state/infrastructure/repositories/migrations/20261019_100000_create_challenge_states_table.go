package statemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating challenge_states table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS challenge_states (
				challenge_id TEXT PRIMARY KEY,
				state TEXT NOT NULL
					CHECK (state IN ('locked', 'submission', 'voting', 'scoring', 'complete')),
				start_time TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				end_time TIMESTAMPTZ,
				metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
				config JSONB NOT NULL DEFAULT '{}'::jsonb,
				version BIGINT NOT NULL DEFAULT 1,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
			);
			CREATE INDEX IF NOT EXISTS idx_challenge_states_start_time ON challenge_states(start_time);
		`)
		if err != nil {
			return fmt.Errorf("failed to create challenge_states table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping challenge_states table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS challenge_states`); err != nil {
			return fmt.Errorf("failed to drop challenge_states table: %w", err)
		}
		return nil
	})
}
