package imagesdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for image submissions and votes. Every
// method is scoped to one challenge.
type Repository interface {
	// AddImage stores a team's submission. Fails with ErrConflict.
	AddImage(ctx context.Context, db bun.IDB, challengeID, teamName, imageURL, prompt string) (*ImageSubmission, error)

	// AddHiddenImage stores the hidden original. Fails with ErrConflict.
	AddHiddenImage(ctx context.Context, db bun.IDB, challengeID, imageURL, prompt string) (*ImageSubmission, error)

	// VoteOnImage applies a batch of votes atomically.
	VoteOnImage(ctx context.Context, db bun.IDB, challengeID, votingTeam string, targets []string) (*VoteOutcome, error)

	// GetAllImages returns every submission except the excluded team names.
	GetAllImages(ctx context.Context, db bun.IDB, challengeID string, excludeTeams ...string) ([]ImageSubmission, error)

	GetHiddenImage(ctx context.Context, db bun.IDB, challengeID string) (*ImageSubmission, error)
	GetTeamImage(ctx context.Context, db bun.IDB, challengeID, teamName string) (*ImageSubmission, error)

	// GetVotesGivenByTeam returns targets in the order they were voted for.
	GetVotesGivenByTeam(ctx context.Context, db bun.IDB, challengeID, teamName string) ([]string, error)

	// GetVotesRemaining returns max minus votes given, floored at zero.
	GetVotesRemaining(ctx context.Context, db bun.IDB, challengeID, teamName string) (int, error)

	// DeleteAllImages removes every submission for the challenge.
	DeleteAllImages(ctx context.Context, db bun.IDB, challengeID string) (int, error)

	// MaxVotesPerTeam reports the configured cap.
	MaxVotesPerTeam() int
}
