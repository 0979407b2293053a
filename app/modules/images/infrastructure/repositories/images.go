package imagesdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = fmt.Errorf("image %w", arcadeerrors.ErrNotFound)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db       bun.IDB
	maxVotes int
}

// NewRepository creates a new images repository. A non-positive
// maxVotesPerTeam falls back to DefaultMaxVotesPerTeam.
func NewRepository(db bun.IDB, maxVotesPerTeam int) Repository {
	if maxVotesPerTeam <= 0 {
		maxVotesPerTeam = DefaultMaxVotesPerTeam
	}
	return &Impl{db: db, maxVotes: maxVotesPerTeam}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// inTx runs fn inside a transaction unless db already is one.
func inTx(ctx context.Context, db bun.IDB, fn func(ctx context.Context, tx bun.IDB) error) error {
	if bdb, ok := db.(*bun.DB); ok {
		return bdb.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, tx)
		})
	}
	return fn(ctx, db)
}

func (r *Impl) MaxVotesPerTeam() int {
	return r.maxVotes
}

// AddImage stores a team's submission.
func (r *Impl) AddImage(ctx context.Context, db bun.IDB, challengeID, teamName, imageURL, prompt string) (*ImageSubmission, error) {
	if strings.TrimSpace(teamName) == "" {
		return nil, fmt.Errorf("%w: team name is required", arcadeerrors.ErrValidation)
	}
	if teamName == HiddenImageKey {
		return nil, fmt.Errorf("%w: team name %s is reserved", arcadeerrors.ErrValidation, HiddenImageKey)
	}
	return r.insert(ctx, r.resolveDB(db), &ImageSubmission{
		ChallengeID: challengeID,
		TeamName:    teamName,
		ImageURL:    imageURL,
		Prompt:      prompt,
	})
}

// AddHiddenImage stores the hidden original.
func (r *Impl) AddHiddenImage(ctx context.Context, db bun.IDB, challengeID, imageURL, prompt string) (*ImageSubmission, error) {
	return r.insert(ctx, r.resolveDB(db), &ImageSubmission{
		ChallengeID: challengeID,
		TeamName:    HiddenImageKey,
		ImageURL:    imageURL,
		Prompt:      prompt,
		IsHidden:    true,
	})
}

func (r *Impl) insert(ctx context.Context, db bun.IDB, img *ImageSubmission) (*ImageSubmission, error) {
	if strings.TrimSpace(img.ImageURL) == "" {
		return nil, fmt.Errorf("%w: image url is required", arcadeerrors.ErrValidation)
	}
	if strings.TrimSpace(img.ChallengeID) == "" {
		return nil, fmt.Errorf("%w: challenge id is required", arcadeerrors.ErrValidation)
	}
	img.VotesReceived = []string{}
	img.VotesGiven = []string{}

	res, err := db.NewInsert().
		Model(img).
		On("CONFLICT (challenge_id, team_name) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to add image: %w", err)
	}
	var rows int64
	if err == nil {
		if rows, err = res.RowsAffected(); err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
	}
	if rows == 0 {
		if img.IsHidden {
			return nil, fmt.Errorf("%w: hidden image already exists and cannot be replaced", arcadeerrors.ErrConflict)
		}
		return nil, fmt.Errorf("%w: team %s has already submitted an image", arcadeerrors.ErrConflict, img.TeamName)
	}
	return img, nil
}

// VoteOnImage locks the voter and every target row in team name order, so
// two teams voting for each other cannot deadlock, then validates the whole
// batch and appends the voter to each target and the targets to the voter.
// Target appends are conditional on the voter not already being present, so
// a racing duplicate cannot double-credit a vote.
func (r *Impl) VoteOnImage(ctx context.Context, db bun.IDB, challengeID, votingTeam string, targets []string) (*VoteOutcome, error) {
	db = r.resolveDB(db)
	var outcome *VoteOutcome

	err := inTx(ctx, db, func(ctx context.Context, tx bun.IDB) error {
		var locked []ImageSubmission
		err := tx.NewSelect().
			Model(&locked).
			Where("challenge_id = ?", challengeID).
			Where("team_name IN (?)", bun.In(lockSet(votingTeam, targets))).
			Order("team_name ASC").
			For("UPDATE").
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to lock vote rows: %w", err)
		}

		voter := &ImageSubmission{}
		voterSubmitted := false
		submitted := make(map[string]bool, len(locked))
		for i := range locked {
			if locked[i].TeamName == votingTeam {
				voter = &locked[i]
				voterSubmitted = true
				continue
			}
			submitted[locked[i].TeamName] = true
		}

		if err := ValidateVoteBatch(VoteBatch{
			VotingTeam:      votingTeam,
			Targets:         targets,
			ExistingGiven:   voter.VotesGiven,
			VoterSubmitted:  voterSubmitted,
			SubmittedTeams:  submitted,
			MaxVotesPerTeam: r.maxVotes,
		}); err != nil {
			return err
		}

		for _, target := range targets {
			res, err := tx.NewUpdate().
				Model((*ImageSubmission)(nil)).
				Set("votes_received = array_append(votes_received, ?)", votingTeam).
				Where("challenge_id = ?", challengeID).
				Where("team_name = ?", target).
				Where("NOT (? = ANY(votes_received))", votingTeam).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to record vote for %s: %w", target, err)
			}
			if n, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			} else if n == 0 {
				return fmt.Errorf("%w: team %s already voted for %s", arcadeerrors.ErrDuplicateVote, votingTeam, target)
			}
		}

		res, err := tx.NewUpdate().
			Model((*ImageSubmission)(nil)).
			Set("votes_given = array_cat(votes_given, ?::text[])", pgdialect.Array(targets)).
			Where("challenge_id = ?", challengeID).
			Where("team_name = ?", votingTeam).
			Where("cardinality(votes_given) + ? <= ?", len(targets), r.maxVotes).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to record votes given: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("%w: team %s cannot cast %d more votes", arcadeerrors.ErrVoteLimitExceeded, votingTeam, len(targets))
		}

		given := append(append([]string{}, voter.VotesGiven...), targets...)
		outcome = &VoteOutcome{
			Voted:          append([]string{}, targets...),
			VotesGiven:     given,
			VotesRemaining: remaining(len(given), r.maxVotes),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// lockSet returns the voter plus the distinct targets.
func lockSet(votingTeam string, targets []string) []string {
	seen := map[string]bool{votingTeam: true}
	names := []string{votingTeam}
	for _, t := range targets {
		if !seen[t] {
			seen[t] = true
			names = append(names, t)
		}
	}
	return names
}

// GetAllImages returns submissions ordered by submission time.
func (r *Impl) GetAllImages(ctx context.Context, db bun.IDB, challengeID string, excludeTeams ...string) ([]ImageSubmission, error) {
	db = r.resolveDB(db)
	var images []ImageSubmission
	q := db.NewSelect().
		Model(&images).
		Where("challenge_id = ?", challengeID).
		Order("submitted_at ASC", "team_name ASC")
	if len(excludeTeams) > 0 {
		q = q.Where("team_name NOT IN (?)", bun.In(excludeTeams))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// GetHiddenImage returns the hidden original or ErrNotFound.
func (r *Impl) GetHiddenImage(ctx context.Context, db bun.IDB, challengeID string) (*ImageSubmission, error) {
	return r.GetTeamImage(ctx, db, challengeID, HiddenImageKey)
}

// GetTeamImage returns one submission or ErrNotFound.
func (r *Impl) GetTeamImage(ctx context.Context, db bun.IDB, challengeID, teamName string) (*ImageSubmission, error) {
	db = r.resolveDB(db)
	img := new(ImageSubmission)
	err := db.NewSelect().
		Model(img).
		Where("challenge_id = ?", challengeID).
		Where("team_name = ?", teamName).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, teamName)
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// GetVotesGivenByTeam returns an empty list for teams without a submission.
func (r *Impl) GetVotesGivenByTeam(ctx context.Context, db bun.IDB, challengeID, teamName string) ([]string, error) {
	img, err := r.GetTeamImage(ctx, db, challengeID, teamName)
	if err != nil {
		if errors.Is(err, arcadeerrors.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if img.VotesGiven == nil {
		return []string{}, nil
	}
	return img.VotesGiven, nil
}

func (r *Impl) GetVotesRemaining(ctx context.Context, db bun.IDB, challengeID, teamName string) (int, error) {
	given, err := r.GetVotesGivenByTeam(ctx, db, challengeID, teamName)
	if err != nil {
		return 0, err
	}
	return remaining(len(given), r.maxVotes), nil
}

// DeleteAllImages removes every submission, hidden image included.
func (r *Impl) DeleteAllImages(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*ImageSubmission)(nil)).
		Where("challenge_id = ?", challengeID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete images: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
