package picperfectservice

import (
	"time"

	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
)

// SubmissionResult confirms a team image.
type SubmissionResult struct {
	ChallengeID string    `json:"challengeId"`
	TeamName    string    `json:"teamName"`
	ImageURL    string    `json:"imageUrl"`
	Prompt      string    `json:"prompt"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// HiddenImageResult confirms the hidden original.
type HiddenImageResult struct {
	ChallengeID    string    `json:"challengeId"`
	ImageURL       string    `json:"imageUrl"`
	Prompt         string    `json:"prompt"`
	SubmittedAt    time.Time `json:"submittedAt"`
	HiddenImageSet bool      `json:"hiddenImageSet"`
}

// VoteResult is the voter's position after a batch.
type VoteResult struct {
	ChallengeID    string   `json:"challengeId"`
	TeamName       string   `json:"teamName"`
	Voted          []string `json:"voted"`
	VotesGiven     []string `json:"votesGiven"`
	VotesRemaining int      `json:"votesRemaining"`
}

// PoolEntry is one image a team may vote on. EntryID is stable for a
// challenge and does not reveal the team.
type PoolEntry struct {
	EntryID  string `json:"entryId"`
	TeamName string `json:"teamName"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// SubmissionView describes a stored image.
type SubmissionView struct {
	ImageURL    string    `json:"imageUrl"`
	Prompt      string    `json:"prompt"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// TeamStatus merges a team's submission, votes and score.
type TeamStatus struct {
	ChallengeID    string                 `json:"challengeId"`
	TeamName       string                 `json:"teamName"`
	State          statedb.ChallengeState `json:"state"`
	HasSubmitted   bool                   `json:"hasSubmitted"`
	Submission     *SubmissionView        `json:"submission,omitempty"`
	VotesGiven     []string               `json:"votesGiven"`
	VotesRemaining int                    `json:"votesRemaining"`
	Score          *ScoreEntry            `json:"score,omitempty"`
}

// ScoreEntry is one ranked leaderboard row.
type ScoreEntry struct {
	Rank            int    `json:"rank"`
	TeamName        string `json:"teamName"`
	DeceptionPoints int    `json:"deceptionPoints"`
	DiscoveryPoints int    `json:"discoveryPoints"`
	TotalPoints     int    `json:"totalPoints"`
	VotesReceived   int    `json:"votesReceived"`
	VotedForHidden  bool   `json:"votedForHidden"`
	ImageURL        string `json:"imageUrl"`
}

// ScoringResult lists every team's computed score in leaderboard order.
type ScoringResult struct {
	ChallengeID string       `json:"challengeId"`
	Entries     []ScoreEntry `json:"entries"`
}

// FinalizeResult reports a completed challenge.
type FinalizeResult struct {
	ChallengeID     string                 `json:"challengeId"`
	State           statedb.ChallengeState `json:"state"`
	TeamsScored     int                    `json:"teamsScored"`
	EndTime         *time.Time             `json:"endTime,omitempty"`
	AlreadyComplete bool                   `json:"alreadyComplete"`
}

// TransitionResult reports a state change.
type TransitionResult struct {
	ChallengeID   string                 `json:"challengeId"`
	PreviousState statedb.ChallengeState `json:"previousState"`
	CurrentState  statedb.ChallengeState `json:"currentState"`
}

// HiddenImageView is the revealed original.
type HiddenImageView struct {
	ImageURL      string   `json:"imageUrl"`
	Prompt        string   `json:"prompt"`
	VotesReceived []string `json:"votesReceived"`
}

// LeaderboardView merges ranked scores, the hidden image once revealed, and
// the current state.
type LeaderboardView struct {
	ChallengeID string                 `json:"challengeId"`
	State       statedb.ChallengeState `json:"state"`
	Entries     []ScoreEntry           `json:"entries"`
	HiddenImage *HiddenImageView       `json:"hiddenImage,omitempty"`
}

// SubmissionStatus diffs the team roster against submissions.
type SubmissionStatus struct {
	ChallengeID           string                 `json:"challengeId"`
	State                 statedb.ChallengeState `json:"state"`
	TeamsSubmitted        int                    `json:"teamsSubmitted"`
	TotalTeams            int                    `json:"totalTeams"`
	PendingTeams          []string               `json:"pendingTeams"`
	CanTransitionToVoting bool                   `json:"canTransitionToVoting"`
}

// VotingStatus reports which submitting teams still hold votes.
// AllVotesCast is advisory; closing the vote is an admin decision.
type VotingStatus struct {
	ChallengeID            string                 `json:"challengeId"`
	State                  statedb.ChallengeState `json:"state"`
	TeamsCompletedVoting   int                    `json:"teamsCompletedVoting"`
	TotalTeams             int                    `json:"totalTeams"`
	PendingTeams           []string               `json:"pendingTeams"`
	AllVotesCast           bool                   `json:"allVotesCast"`
	CanTransitionToScoring bool                   `json:"canTransitionToScoring"`
}

// ChallengeStatus summarizes one challenge record.
type ChallengeStatus struct {
	ChallengeID         string                 `json:"challengeId"`
	State               statedb.ChallengeState `json:"state"`
	StartTime           time.Time              `json:"startTime"`
	EndTime             *time.Time             `json:"endTime,omitempty"`
	IsActive            bool                   `json:"isActive"`
	HiddenImageSet      bool                   `json:"hiddenImageSet"`
	HiddenImageRevealed bool                   `json:"hiddenImageRevealed"`
	Config              statedb.Config         `json:"config"`
	Version             int64                  `json:"version"`
}

// StartResult reports a started challenge.
type StartResult struct {
	ChallengeID    string                 `json:"challengeId"`
	State          statedb.ChallengeState `json:"state"`
	HiddenImageSet bool                   `json:"hiddenImageSet"`
	Reopened       bool                   `json:"reopened"`
	Config         statedb.Config         `json:"config"`
}

// ResetResult counts what a reset removed.
type ResetResult struct {
	ChallengeID               string                 `json:"challengeId"`
	State                     statedb.ChallengeState `json:"state"`
	LeaderboardEntriesRemoved int                    `json:"leaderboardEntriesRemoved"`
	ImagesRemoved             int                    `json:"imagesRemoved"`
	TeamsRemoved              int                    `json:"teamsRemoved"`
	TeamsPreserved            bool                   `json:"teamsPreserved"`
}

func toChallengeStatus(rec *statedb.ChallengeRecord) ChallengeStatus {
	cfg := rec.Config
	if cfg == nil {
		cfg = statedb.Config{}
	}
	return ChallengeStatus{
		ChallengeID:         rec.ChallengeID,
		State:               rec.State,
		StartTime:           rec.StartTime,
		EndTime:             rec.EndTime,
		IsActive:            rec.IsActive(),
		HiddenImageSet:      rec.Metadata.Bool(statedb.MetaHiddenImageSet),
		HiddenImageRevealed: rec.Metadata.Bool(statedb.MetaHiddenImageRevealed),
		Config:              cfg,
		Version:             rec.Version,
	}
}
