package imagesdb

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// HiddenImageKey is the team name reserved for the hidden original.
const HiddenImageKey = "HIDDEN_IMAGE"

// DefaultMaxVotesPerTeam caps the votes a team can give in one challenge.
const DefaultMaxVotesPerTeam = 3

// ImageSubmission is one team's image for one challenge.
type ImageSubmission struct {
	bun.BaseModel `bun:"table:pp_images,alias:img"`

	ChallengeID   string    `bun:"challenge_id,pk"`
	TeamName      string    `bun:"team_name,pk"`
	ImageURL      string    `bun:"image_url,notnull"`
	Prompt        string    `bun:"prompt,notnull"`
	SubmittedAt   time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
	IsHidden      bool      `bun:"is_hidden,notnull"`
	VotesReceived []string  `bun:"votes_received,array,nullzero,notnull,default:'{}'"`
	VotesGiven    []string  `bun:"votes_given,array,nullzero,notnull,default:'{}'"`
}

// HasVotedFor reports whether the submitting team voted for target.
func (s *ImageSubmission) HasVotedFor(target string) bool {
	return slices.Contains(s.VotesGiven, target)
}

// VoteOutcome is the voter's position after a successful batch.
type VoteOutcome struct {
	Voted          []string
	VotesGiven     []string
	VotesRemaining int
}
