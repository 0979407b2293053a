package leaderboarddb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for leaderboard persistence.
//
// Every method is keyed by challenge id; rows for other challenges sharing
// the table are never read or written.
type Repository interface {
	// UpdateScore upserts the entry for (challengeID, teamName), touching only
	// the fields set on update.
	UpdateScore(ctx context.Context, db bun.IDB, challengeID, teamName string, update ScoreUpdate) (*LeaderboardEntry, error)

	// GetLeaderboard returns entries by total points descending, ties in
	// insertion order.
	GetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) ([]LeaderboardEntry, error)

	// GetTeamScore returns one entry or ErrNotFound.
	GetTeamScore(ctx context.Context, db bun.IDB, challengeID, teamName string) (*LeaderboardEntry, error)

	// ResetLeaderboard deletes the challenge's entries and reports how many.
	ResetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) (int, error)
}
