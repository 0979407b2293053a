package statedb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for challenge state persistence.
type Repository interface {
	// Get returns the challenge record or ErrNotFound.
	Get(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error)

	// GetForShare reads the record with a share lock held until the
	// surrounding transaction ends.
	GetForShare(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error)

	// GetForUpdate reads the record with a write lock held until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error)

	// Initialize creates a record in SUBMISSION. Fails with ErrAlreadyExists.
	Initialize(ctx context.Context, db bun.IDB, challengeID string, config Config) (*ChallengeRecord, error)

	// Reopen restarts a LOCKED record in SUBMISSION with fresh timestamps and
	// cleared metadata.
	Reopen(ctx context.Context, db bun.IDB, challengeID string, config Config) (*ChallengeRecord, error)

	// Update merges the given fields. Fails with ErrNotFound.
	Update(ctx context.Context, db bun.IDB, challengeID string, update StateUpdate) error

	// CompareAndSetState applies update and moves the state to "to" only if
	// the stored state is still "from".
	CompareAndSetState(ctx context.Context, db bun.IDB, challengeID string, from, to ChallengeState, update StateUpdate) error

	// Lock forces LOCKED. Idempotent.
	Lock(ctx context.Context, db bun.IDB, challengeID string) error

	// Unlock moves the record into a working state.
	Unlock(ctx context.Context, db bun.IDB, challengeID string, target ChallengeState) error

	// Finalize sets COMPLETE and the end time (database now when nil).
	Finalize(ctx context.Context, db bun.IDB, challengeID string, endTime *time.Time) error

	IsActive(ctx context.Context, db bun.IDB, challengeID string) (bool, error)
	IsLocked(ctx context.Context, db bun.IDB, challengeID string) (bool, error)
	IsComplete(ctx context.Context, db bun.IDB, challengeID string) (bool, error)

	// ListAll returns every challenge ordered by start time.
	ListAll(ctx context.Context, db bun.IDB) ([]ChallengeRecord, error)
}
