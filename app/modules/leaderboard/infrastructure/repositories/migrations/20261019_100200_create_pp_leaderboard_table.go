package leaderboardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating pp_leaderboard table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS pp_leaderboard (
				challenge_id TEXT NOT NULL,
				team_name TEXT NOT NULL,
				seq BIGSERIAL NOT NULL,
				deception_points INTEGER NOT NULL DEFAULT 0,
				discovery_points INTEGER NOT NULL DEFAULT 0,
				total_points INTEGER NOT NULL DEFAULT 0,
				image_url TEXT NOT NULL DEFAULT '',
				voted_for_hidden BOOLEAN NOT NULL DEFAULT FALSE,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				PRIMARY KEY (challenge_id, team_name)
			);
			CREATE INDEX IF NOT EXISTS idx_pp_leaderboard_rank
				ON pp_leaderboard(challenge_id, total_points DESC, seq ASC);
		`)
		if err != nil {
			return fmt.Errorf("failed to create pp_leaderboard table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping pp_leaderboard table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS pp_leaderboard`); err != nil {
			return fmt.Errorf("failed to drop pp_leaderboard table: %w", err)
		}
		return nil
	})
}
