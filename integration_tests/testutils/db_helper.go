package testutils

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// appTables lists every table the migrations create.
var appTables = []string{"pp_leaderboard", "pp_images", "teams", "challenge_states"}

// CleanupDatabase truncates all application tables.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	return TruncateTables(ctx, db, appTables...)
}

// TruncateTables truncates the specified tables and resets their sequences.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}

	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf(`"%s"`, table)
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}
