package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

var (
	// ErrNotFound is returned when a team is not registered.
	ErrNotFound = fmt.Errorf("team %w", arcadeerrors.ErrNotFound)
	// ErrAlreadyExists is returned when registering a taken name.
	ErrAlreadyExists = fmt.Errorf("team %w", arcadeerrors.ErrAlreadyExists)
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new team repository.
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

// Create registers a team.
func (r *Impl) Create(ctx context.Context, db bun.IDB, team *Team) error {
	db = r.resolveDB(db)
	if team.Members == nil {
		team.Members = []string{}
	}
	res, err := db.NewInsert().
		Model(team).
		On("CONFLICT (team_name) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to create team: %w", err)
	}
	var rows int64
	if err == nil {
		if rows, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, team.TeamName)
	}
	return nil
}

// Get retrieves a team by name.
func (r *Impl) Get(ctx context.Context, db bun.IDB, teamName string) (*Team, error) {
	db = r.resolveDB(db)
	team := new(Team)
	err := db.NewSelect().
		Model(team).
		Where("team_name = ?", teamName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, teamName)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// UpdateMembers replaces a team's members.
func (r *Impl) UpdateMembers(ctx context.Context, db bun.IDB, teamName string, members []string) error {
	db = r.resolveDB(db)
	if members == nil {
		members = []string{}
	}
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("members = ?", pgdialect.Array(members)).
		Set("last_active = current_timestamp").
		Where("team_name = ?", teamName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update team members: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, teamName)
	}
	return nil
}

// Touch updates last_active.
func (r *Impl) Touch(ctx context.Context, db bun.IDB, teamName string) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("last_active = current_timestamp").
		Where("team_name = ?", teamName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch team: %w", err)
	}
	return nil
}

// Delete removes a team.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, teamName string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Team)(nil)).
		Where("team_name = ?", teamName).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, teamName)
	}
	return nil
}

// ListAll returns every team.
func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]Team, error) {
	db = r.resolveDB(db)
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Order("created_at ASC", "team_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// Count returns the number of registered teams.
func (r *Impl) Count(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Team)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return n, nil
}

// DeleteAll removes every team.
func (r *Impl) DeleteAll(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Team)(nil)).
		Where("TRUE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete teams: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
