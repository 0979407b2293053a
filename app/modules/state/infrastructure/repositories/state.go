package statedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a challenge has never been initialized.
	ErrNotFound = fmt.Errorf("challenge %w", arcadeerrors.ErrNotFound)
	// ErrAlreadyExists is returned when initializing an existing challenge.
	ErrAlreadyExists = fmt.Errorf("challenge %w", arcadeerrors.ErrAlreadyExists)
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new challenge state repository.
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

func notInitialized(challengeID string) error {
	return fmt.Errorf("%w: challenge %s not initialized", ErrNotFound, challengeID)
}

// Get retrieves a challenge record.
func (r *Impl) Get(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error) {
	return r.get(ctx, r.resolveDB(db), challengeID, "")
}

// GetForShare retrieves a challenge record under FOR SHARE.
func (r *Impl) GetForShare(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error) {
	return r.get(ctx, r.resolveDB(db), challengeID, "SHARE")
}

// GetForUpdate retrieves a challenge record under FOR NO KEY UPDATE, which
// queues concurrent writers of the same challenge behind each other.
func (r *Impl) GetForUpdate(ctx context.Context, db bun.IDB, challengeID string) (*ChallengeRecord, error) {
	return r.get(ctx, r.resolveDB(db), challengeID, "NO KEY UPDATE")
}

func (r *Impl) get(ctx context.Context, db bun.IDB, challengeID string, lock string) (*ChallengeRecord, error) {
	rec := new(ChallengeRecord)
	q := db.NewSelect().
		Model(rec).
		Where("challenge_id = ?", challengeID)
	if lock != "" {
		q = q.For(lock)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notInitialized(challengeID)
		}
		return nil, fmt.Errorf("failed to get challenge state: %w", err)
	}
	return rec, nil
}

// Initialize creates a challenge in SUBMISSION.
func (r *Impl) Initialize(ctx context.Context, db bun.IDB, challengeID string, config Config) (*ChallengeRecord, error) {
	db = r.resolveDB(db)
	if config == nil {
		config = Config{}
	}
	rec := &ChallengeRecord{
		ChallengeID: challengeID,
		State:       StateSubmission,
		Metadata:    Metadata{},
		Config:      config,
		Version:     1,
	}

	res, err := db.NewInsert().
		Model(rec).
		On("CONFLICT (challenge_id) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, challengeID)
		}
		return nil, fmt.Errorf("failed to initialize challenge: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, challengeID)
	}
	return rec, nil
}

// Reopen restarts a LOCKED challenge in SUBMISSION.
func (r *Impl) Reopen(ctx context.Context, db bun.IDB, challengeID string, config Config) (*ChallengeRecord, error) {
	db = r.resolveDB(db)

	q := db.NewUpdate().
		Model((*ChallengeRecord)(nil)).
		Set("state = ?", StateSubmission).
		Set("start_time = current_timestamp").
		Set("end_time = NULL").
		Set("metadata = '{}'::jsonb").
		Set("version = version + 1").
		Set("updated_at = current_timestamp").
		Where("challenge_id = ?", challengeID).
		Where("state = ?", StateLocked)
	if len(config) > 0 {
		raw, err := json.Marshal(config)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		q = q.Set("config = ?::jsonb", string(raw))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen challenge: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		current, err := r.Get(ctx, db, challengeID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: challenge %s is %s, only a locked challenge can be reopened",
			arcadeerrors.ErrInvalidState, challengeID, current.State)
	}
	return r.Get(ctx, db, challengeID)
}

// Update merges fields into an existing record.
func (r *Impl) Update(ctx context.Context, db bun.IDB, challengeID string, update StateUpdate) error {
	db = r.resolveDB(db)

	q := db.NewUpdate().
		Model((*ChallengeRecord)(nil)).
		Where("challenge_id = ?", challengeID)
	q, err := applyUpdate(q, update)
	if err != nil {
		return err
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update challenge state: %w", err)
	}
	return requireRow(res, challengeID)
}

// CompareAndSetState moves from -> to only if the stored state is still from.
func (r *Impl) CompareAndSetState(ctx context.Context, db bun.IDB, challengeID string, from, to ChallengeState, update StateUpdate) error {
	db = r.resolveDB(db)
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown challenge state %q", arcadeerrors.ErrValidation, to)
	}
	update.State = &to

	q := db.NewUpdate().
		Model((*ChallengeRecord)(nil)).
		Where("challenge_id = ?", challengeID).
		Where("state = ?", from)
	q, err := applyUpdate(q, update)
	if err != nil {
		return err
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to transition challenge state: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		current, err := r.Get(ctx, db, challengeID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: challenge %s moved to %s before %s -> %s was applied",
			arcadeerrors.ErrInvalidTransition, challengeID, current.State, from, to)
	}
	return nil
}

// Lock forces the challenge into LOCKED.
func (r *Impl) Lock(ctx context.Context, db bun.IDB, challengeID string) error {
	locked := StateLocked
	return r.Update(ctx, db, challengeID, StateUpdate{State: &locked})
}

// Unlock moves the challenge into target, which may not be LOCKED.
func (r *Impl) Unlock(ctx context.Context, db bun.IDB, challengeID string, target ChallengeState) error {
	if target == StateLocked {
		return fmt.Errorf("%w: cannot unlock into %s", arcadeerrors.ErrInvalidTransition, StateLocked)
	}
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown challenge state %q", arcadeerrors.ErrValidation, target)
	}

	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*ChallengeRecord)(nil)).
		Set("state = ?", target).
		Set("version = version + 1").
		Set("updated_at = current_timestamp").
		Where("challenge_id = ?", challengeID)
	if target == StateComplete {
		q = q.Set("end_time = COALESCE(end_time, current_timestamp)")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to unlock challenge: %w", err)
	}
	return requireRow(res, challengeID)
}

// Finalize marks the challenge COMPLETE.
func (r *Impl) Finalize(ctx context.Context, db bun.IDB, challengeID string, endTime *time.Time) error {
	db = r.resolveDB(db)

	q := db.NewUpdate().
		Model((*ChallengeRecord)(nil)).
		Set("state = ?", StateComplete).
		Set("version = version + 1").
		Set("updated_at = current_timestamp").
		Where("challenge_id = ?", challengeID)
	if endTime != nil {
		q = q.Set("end_time = ?", endTime.UTC())
	} else {
		q = q.Set("end_time = current_timestamp")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finalize challenge: %w", err)
	}
	return requireRow(res, challengeID)
}

// IsActive reports whether the challenge is in SUBMISSION, VOTING or SCORING.
func (r *Impl) IsActive(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	return r.predicate(ctx, db, challengeID, (*ChallengeRecord).IsActive)
}

// IsLocked reports whether the challenge is LOCKED.
func (r *Impl) IsLocked(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	return r.predicate(ctx, db, challengeID, func(rec *ChallengeRecord) bool { return rec.State == StateLocked })
}

// IsComplete reports whether the challenge is COMPLETE.
func (r *Impl) IsComplete(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	return r.predicate(ctx, db, challengeID, func(rec *ChallengeRecord) bool { return rec.State == StateComplete })
}

func (r *Impl) predicate(ctx context.Context, db bun.IDB, challengeID string, fn func(*ChallengeRecord) bool) (bool, error) {
	rec, err := r.Get(ctx, db, challengeID)
	if err != nil {
		if errors.Is(err, arcadeerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return fn(rec), nil
}

// ListAll returns every challenge.
func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]ChallengeRecord, error) {
	db = r.resolveDB(db)
	var records []ChallengeRecord
	err := db.NewSelect().
		Model(&records).
		Order("start_time ASC", "challenge_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return records, nil
}

// applyUpdate translates a StateUpdate into SET clauses. Map merges happen in
// the database with jsonb concatenation so concurrent writers never drop
// each other's keys.
func applyUpdate(q *bun.UpdateQuery, u StateUpdate) (*bun.UpdateQuery, error) {
	q = q.Set("version = version + 1").
		Set("updated_at = current_timestamp")

	if u.State != nil {
		if !u.State.IsValid() {
			return nil, fmt.Errorf("%w: unknown challenge state %q", arcadeerrors.ErrValidation, *u.State)
		}
		q = q.Set("state = ?", *u.State)
	}

	if u.ReplaceMetadata || len(u.Metadata) > 0 {
		raw, err := encodeMap(u.Metadata)
		if err != nil {
			return nil, err
		}
		if u.ReplaceMetadata {
			q = q.Set("metadata = ?::jsonb", raw)
		} else {
			q = q.Set("metadata = metadata || ?::jsonb", raw)
		}
	}

	if u.ReplaceConfig || len(u.Config) > 0 {
		raw, err := encodeMap(u.Config)
		if err != nil {
			return nil, err
		}
		if u.ReplaceConfig {
			q = q.Set("config = ?::jsonb", raw)
		} else {
			q = q.Set("config = config || ?::jsonb", raw)
		}
	}

	switch {
	case u.ClearEndTime:
		q = q.Set("end_time = NULL")
	case u.EndTime != nil:
		q = q.Set("end_time = ?", u.EndTime.UTC())
	}

	return q, nil
}

func encodeMap[M ~map[string]any](m M) (string, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode challenge map: %w", err)
	}
	return string(raw), nil
}

func requireRow(res sql.Result, challengeID string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notInitialized(challengeID)
	}
	return nil
}
