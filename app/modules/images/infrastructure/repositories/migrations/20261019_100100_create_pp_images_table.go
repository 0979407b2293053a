package imagesmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating pp_images table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS pp_images (
				challenge_id TEXT NOT NULL,
				team_name TEXT NOT NULL,
				image_url TEXT NOT NULL,
				prompt TEXT NOT NULL DEFAULT '',
				submitted_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
				is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
				votes_received TEXT[] NOT NULL DEFAULT '{}',
				votes_given TEXT[] NOT NULL DEFAULT '{}',
				PRIMARY KEY (challenge_id, team_name),
				CHECK (NOT (team_name = ANY(votes_given)))
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_pp_images_one_hidden
				ON pp_images(challenge_id) WHERE is_hidden;
		`)
		if err != nil {
			return fmt.Errorf("failed to create pp_images table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping pp_images table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS pp_images`); err != nil {
			return fmt.Errorf("failed to drop pp_images table: %w", err)
		}
		return nil
	})
}
