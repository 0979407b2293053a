package picperfectservice

import (
	"context"

	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
)

// Service runs the Pic Perfect game for one or more challenges. Every
// operation names its challenge explicitly.
type Service interface {
	// Submission
	SubmitTeamImage(ctx context.Context, challengeID, teamName, imageURL, prompt string) (*SubmissionResult, error)
	SubmitHiddenImage(ctx context.Context, challengeID, imageURL, prompt string) (*HiddenImageResult, error)

	// Voting
	CastVotes(ctx context.Context, challengeID, teamName string, targets []string) (*VoteResult, error)
	GetVotingPool(ctx context.Context, challengeID, teamName string) ([]PoolEntry, error)
	ResolvePoolEntries(ctx context.Context, challengeID, teamName string, entryIDs []string) ([]string, error)

	// Scoring
	CalculateScores(ctx context.Context, challengeID string) (*ScoringResult, error)
	FinalizeChallenge(ctx context.Context, challengeID string) (*FinalizeResult, error)

	// State machine
	TransitionChallengeState(ctx context.Context, challengeID string, target statedb.ChallengeState) (*TransitionResult, error)
	CanTransitionToVoting(ctx context.Context, challengeID string) (bool, error)
	CanTransitionToScoring(ctx context.Context, challengeID string) (bool, error)

	// Read views
	GetTeamStatus(ctx context.Context, challengeID, teamName string) (*TeamStatus, error)
	GetLeaderboard(ctx context.Context, challengeID string) (*LeaderboardView, error)
	GetSubmissionStatus(ctx context.Context, challengeID string) (*SubmissionStatus, error)
	GetVotingStatus(ctx context.Context, challengeID string) (*VotingStatus, error)
	GetChallengeStatus(ctx context.Context, challengeID string) (*ChallengeStatus, error)
}

// AdminService holds the privileged operations. It repeats the admin-only
// parts of Service so handlers can depend on it alone.
type AdminService interface {
	StartChallenge(ctx context.Context, challengeID, hiddenImageURL, prompt string, config statedb.Config) (*StartResult, error)
	ResetChallenge(ctx context.Context, challengeID string, preserveTeams bool) (*ResetResult, error)
	LockChallenge(ctx context.Context, challengeID string) (*TransitionResult, error)
	UnlockChallenge(ctx context.Context, challengeID string, target statedb.ChallengeState) (*TransitionResult, error)
	ListChallenges(ctx context.Context) ([]ChallengeStatus, error)

	SubmitHiddenImage(ctx context.Context, challengeID, imageURL, prompt string) (*HiddenImageResult, error)
	TransitionChallengeState(ctx context.Context, challengeID string, target statedb.ChallengeState) (*TransitionResult, error)
	CalculateScores(ctx context.Context, challengeID string) (*ScoringResult, error)
	FinalizeChallenge(ctx context.Context, challengeID string) (*FinalizeResult, error)
	GetSubmissionStatus(ctx context.Context, challengeID string) (*SubmissionStatus, error)
	GetVotingStatus(ctx context.Context, challengeID string) (*VotingStatus, error)
	GetLeaderboard(ctx context.Context, challengeID string) (*LeaderboardView, error)

	ExportLeaderboardXLSX(ctx context.Context, challengeID string) ([]byte, error)
	RenderLeaderboardChart(ctx context.Context, challengeID string) ([]byte, error)
}
