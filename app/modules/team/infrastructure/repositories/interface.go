package teamdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for team persistence.
type Repository interface {
	// Create registers a team. Fails with ErrAlreadyExists.
	Create(ctx context.Context, db bun.IDB, team *Team) error

	// Get returns a team or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, teamName string) (*Team, error)

	// UpdateMembers replaces the member list and touches last_active.
	UpdateMembers(ctx context.Context, db bun.IDB, teamName string, members []string) error

	// Touch records activity for a team. Unknown teams are ignored.
	Touch(ctx context.Context, db bun.IDB, teamName string) error

	// Delete removes a team. Fails with ErrNotFound.
	Delete(ctx context.Context, db bun.IDB, teamName string) error

	// ListAll returns teams in registration order.
	ListAll(ctx context.Context, db bun.IDB) ([]Team, error)

	Count(ctx context.Context, db bun.IDB) (int, error)

	// DeleteAll removes every team and reports how many.
	DeleteAll(ctx context.Context, db bun.IDB) (int, error)
}
