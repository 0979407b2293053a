package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/uptrace/bun"
)

// ErrNotFound indicates the requested entry does not exist.
var ErrNotFound = fmt.Errorf("leaderboard entry %w", arcadeerrors.ErrNotFound)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// UpdateScore upserts a team's entry.
func (r *Impl) UpdateScore(ctx context.Context, db bun.IDB, challengeID, teamName string, update ScoreUpdate) (*LeaderboardEntry, error) {
	if strings.TrimSpace(challengeID) == "" || strings.TrimSpace(teamName) == "" {
		return nil, fmt.Errorf("%w: challenge id and team name are required", arcadeerrors.ErrValidation)
	}
	db = r.resolveDB(db)

	entry := &LeaderboardEntry{ChallengeID: challengeID, TeamName: teamName}
	q := db.NewInsert().
		Model(entry).
		On("CONFLICT (challenge_id, team_name) DO UPDATE").
		Set("updated_at = current_timestamp")

	if update.DeceptionPoints != nil {
		entry.DeceptionPoints = *update.DeceptionPoints
		q = q.Set("deception_points = EXCLUDED.deception_points")
	}
	if update.DiscoveryPoints != nil {
		entry.DiscoveryPoints = *update.DiscoveryPoints
		q = q.Set("discovery_points = EXCLUDED.discovery_points")
	}
	if update.TotalPoints != nil {
		entry.TotalPoints = *update.TotalPoints
		q = q.Set("total_points = EXCLUDED.total_points")
	}
	if update.VotedForHidden != nil {
		entry.VotedForHidden = *update.VotedForHidden
		q = q.Set("voted_for_hidden = EXCLUDED.voted_for_hidden")
	}
	if update.ImageURL != nil {
		entry.ImageURL = *update.ImageURL
		q = q.Set("image_url = EXCLUDED.image_url")
	}

	if _, err := q.Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}
	return entry, nil
}

// GetLeaderboard returns the ranked entries for a challenge.
func (r *Impl) GetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) ([]LeaderboardEntry, error) {
	db = r.resolveDB(db)
	var entries []LeaderboardEntry
	err := db.NewSelect().
		Model(&entries).
		Where("challenge_id = ?", challengeID).
		Order("total_points DESC", "seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// GetTeamScore looks up a single entry.
func (r *Impl) GetTeamScore(ctx context.Context, db bun.IDB, challengeID, teamName string) (*LeaderboardEntry, error) {
	db = r.resolveDB(db)
	entry := new(LeaderboardEntry)
	err := db.NewSelect().
		Model(entry).
		Where("challenge_id = ?", challengeID).
		Where("team_name = ?", teamName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, teamName)
		}
		return nil, fmt.Errorf("failed to get team score: %w", err)
	}
	return entry, nil
}

// ResetLeaderboard deletes only this challenge's entries.
func (r *Impl) ResetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*LeaderboardEntry)(nil)).
		Where("challenge_id = ?", challengeID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset leaderboard: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
