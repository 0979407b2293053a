package picperfectservice

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamservice "github.com/Black-And-White-Club/pic-perfect/app/modules/team/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
)

// entryIDLength is the hex length of a pool entry id.
const entryIDLength = sha256.Size * 2

// PoolEntryID derives the anonymous id of a team's image in a challenge.
// Without the key an id cannot be matched to a team by hashing guesses.
func PoolEntryID(key []byte, challengeID, teamName string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(challengeID))
	mac.Write([]byte{0})
	mac.Write([]byte(teamName))
	return hex.EncodeToString(mac.Sum(nil))
}

// IsPoolEntryID reports whether s has the shape of a pool entry id.
func IsPoolEntryID(s string) bool {
	if len(s) != entryIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// CastVotes applies a vote batch while the challenge is in VOTING.
func (s *PicPerfectService) CastVotes(ctx context.Context, challengeID, teamName string, targets []string) (*VoteResult, error) {
	res, err := operations.Execute(s.runner, ctx, "CastVotes", challengeID+"/"+teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*VoteResult, error], error) {
		return s.castVotesLogic(ctx, db, challengeID, teamName, targets)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordVotesCast(ctx, challengeID, len(res.Voted))
	s.publish(ctx, TopicVotesCast, challengeID, res)
	return res, nil
}

func (s *PicPerfectService) castVotesLogic(ctx context.Context, db bun.IDB, challengeID, teamName string, targets []string) (results.OperationResult[*VoteResult, error], error) {
	if err := teamservice.ValidateTeamName(teamName); err != nil {
		return results.FailureResult[*VoteResult, error](err), nil
	}

	rec, err := s.loadChallenge(ctx, db, challengeID)
	if err != nil {
		return domainOrInfra[*VoteResult](err, "failed to load challenge state")
	}
	if err := requireState(rec, "voting", statedb.StateVoting); err != nil {
		return results.FailureResult[*VoteResult, error](err), nil
	}

	outcome, err := s.imagesRepo.VoteOnImage(ctx, db, challengeID, teamName, targets)
	if err != nil {
		return domainOrInfra[*VoteResult](err, "failed to record votes")
	}

	if err := s.teamRepo.Touch(ctx, db, teamName); err != nil {
		return results.OperationResult[*VoteResult, error]{}, err
	}

	return results.SuccessResult[*VoteResult, error](&VoteResult{
		ChallengeID:    challengeID,
		TeamName:       teamName,
		Voted:          outcome.Voted,
		VotesGiven:     outcome.VotesGiven,
		VotesRemaining: outcome.VotesRemaining,
	}), nil
}

// GetVotingPool lists every image except the requester's, ordered by entry
// id. Available from VOTING onwards.
func (s *PicPerfectService) GetVotingPool(ctx context.Context, challengeID, teamName string) ([]PoolEntry, error) {
	return operations.Execute(s.runner, ctx, "GetVotingPool", challengeID+"/"+teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]PoolEntry, error], error) {
		if err := teamservice.ValidateTeamName(teamName); err != nil {
			return results.FailureResult[[]PoolEntry, error](err), nil
		}
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[[]PoolEntry](err, "failed to load challenge state")
		}
		if err := requireState(rec, "voting pool", statedb.StateVoting, statedb.StateScoring, statedb.StateComplete); err != nil {
			return results.FailureResult[[]PoolEntry, error](err), nil
		}

		pool, err := s.votingPool(ctx, db, challengeID, teamName)
		if err != nil {
			return results.OperationResult[[]PoolEntry, error]{}, err
		}
		return results.SuccessResult[[]PoolEntry, error](pool), nil
	})
}

func (s *PicPerfectService) votingPool(ctx context.Context, db bun.IDB, challengeID, teamName string) ([]PoolEntry, error) {
	images, err := s.imagesRepo.GetAllImages(ctx, db, challengeID, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to load voting pool: %w", err)
	}
	pool := make([]PoolEntry, 0, len(images))
	for _, img := range images {
		pool = append(pool, PoolEntry{
			EntryID:  PoolEntryID(s.poolKey, challengeID, img.TeamName),
			TeamName: img.TeamName,
			ImageURL: img.ImageURL,
			Prompt:   img.Prompt,
		})
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].EntryID < pool[j].EntryID })
	return pool, nil
}

// ResolvePoolEntries maps entry ids from the requester's pool back to team
// names, preserving order.
func (s *PicPerfectService) ResolvePoolEntries(ctx context.Context, challengeID, teamName string, entryIDs []string) ([]string, error) {
	return operations.Execute(s.runner, ctx, "ResolvePoolEntries", challengeID+"/"+teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		if err := teamservice.ValidateTeamName(teamName); err != nil {
			return results.FailureResult[[]string, error](err), nil
		}
		if _, err := s.loadChallenge(ctx, db, challengeID); err != nil {
			return domainOrInfra[[]string](err, "failed to load challenge state")
		}

		pool, err := s.votingPool(ctx, db, challengeID, teamName)
		if err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		byID := make(map[string]string, len(pool))
		for _, p := range pool {
			byID[p.EntryID] = p.TeamName
		}

		names := make([]string, 0, len(entryIDs))
		for _, id := range entryIDs {
			name, ok := byID[id]
			if !ok {
				return results.FailureResult[[]string, error](
					fmt.Errorf("%w: no pool entry %q for team %s", arcadeerrors.ErrNotFound, id, teamName)), nil
			}
			names = append(names, name)
		}
		return results.SuccessResult[[]string, error](names), nil
	})
}

// submittedTeams returns the non-hidden submissions keyed by team.
func submittedTeams(images []imagesdb.ImageSubmission) map[string]*imagesdb.ImageSubmission {
	out := make(map[string]*imagesdb.ImageSubmission, len(images))
	for i := range images {
		if images[i].IsHidden || images[i].TeamName == imagesdb.HiddenImageKey {
			continue
		}
		out[images[i].TeamName] = &images[i]
	}
	return out
}
