package imagesdb

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
)

// VoteBatch is everything needed to judge a batch without touching storage.
type VoteBatch struct {
	VotingTeam      string
	Targets         []string
	ExistingGiven   []string
	VoterSubmitted  bool
	SubmittedTeams  map[string]bool
	MaxVotesPerTeam int
}

// ValidateVoteBatch checks the whole batch before anything is written. The
// first violated rule rejects every target.
func ValidateVoteBatch(b VoteBatch) error {
	if strings.TrimSpace(b.VotingTeam) == "" {
		return fmt.Errorf("%w: voting team name is required", arcadeerrors.ErrValidation)
	}
	if b.VotingTeam == HiddenImageKey {
		return fmt.Errorf("%w: %s cannot vote", arcadeerrors.ErrValidation, HiddenImageKey)
	}
	if len(b.Targets) == 0 {
		return fmt.Errorf("%w: at least one vote target is required", arcadeerrors.ErrValidation)
	}

	seen := make(map[string]struct{}, len(b.Targets))
	for _, target := range b.Targets {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("%w: vote target name is required", arcadeerrors.ErrValidation)
		}
		if _, dup := seen[target]; dup {
			return fmt.Errorf("%w: %s appears more than once in the batch", arcadeerrors.ErrDuplicateVote, target)
		}
		seen[target] = struct{}{}
	}

	given := make(map[string]struct{}, len(b.ExistingGiven))
	for _, g := range b.ExistingGiven {
		given[g] = struct{}{}
	}

	for _, target := range b.Targets {
		if target == b.VotingTeam {
			return fmt.Errorf("%w: team %s cannot vote for itself", arcadeerrors.ErrSelfVote, b.VotingTeam)
		}
		if _, already := given[target]; already {
			return fmt.Errorf("%w: team %s already voted for %s", arcadeerrors.ErrDuplicateVote, b.VotingTeam, target)
		}
	}

	limit := b.MaxVotesPerTeam
	if limit <= 0 {
		limit = DefaultMaxVotesPerTeam
	}
	if len(b.ExistingGiven)+len(b.Targets) > limit {
		return fmt.Errorf("%w: team %s has %d of %d votes left and tried to cast %d",
			arcadeerrors.ErrVoteLimitExceeded, b.VotingTeam, remaining(len(b.ExistingGiven), limit), limit, len(b.Targets))
	}

	if !b.VoterSubmitted {
		return fmt.Errorf("%w: team %s has not submitted an image and cannot vote", arcadeerrors.ErrNotFound, b.VotingTeam)
	}
	for _, target := range b.Targets {
		if !b.SubmittedTeams[target] {
			return fmt.Errorf("%w: no submission found for %s", arcadeerrors.ErrNotFound, target)
		}
	}

	return nil
}

func remaining(given, limit int) int {
	if r := limit - given; r > 0 {
		return r
	}
	return 0
}
