package picperfectservice

import (
	"context"
	"errors"
	"fmt"
	"maps"

	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
)

// challengeConfig layers the caller's config over the service defaults. The
// vote cap always reflects the images store, which enforces it.
func (s *PicPerfectService) challengeConfig(config statedb.Config) statedb.Config {
	out := statedb.Config{
		statedb.ConfigDeceptionPointsPerVote: s.rules.DeceptionPointsPerVote,
		statedb.ConfigDiscoveryPoints:        s.rules.DiscoveryPoints,
	}
	maps.Copy(out, config)
	out[statedb.ConfigMaxVotesPerTeam] = s.imagesRepo.MaxVotesPerTeam()
	return out
}

// StartChallenge opens a challenge for submissions with its hidden image in
// place. A LOCKED challenge is reopened with its images and scores cleared.
// Both steps share one transaction.
func (s *PicPerfectService) StartChallenge(ctx context.Context, challengeID, hiddenImageURL, prompt string, config statedb.Config) (*StartResult, error) {
	res, err := operations.Execute(s.runner, ctx, "StartChallenge", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*StartResult, error], error) {
		return s.startChallengeLogic(ctx, db, challengeID, hiddenImageURL, prompt, config)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TopicChallengeStarted, challengeID, res)
	return res, nil
}

func (s *PicPerfectService) startChallengeLogic(ctx context.Context, db bun.IDB, challengeID, hiddenImageURL, prompt string, config statedb.Config) (results.OperationResult[*StartResult, error], error) {
	if err := validateNonEmpty("challenge id", challengeID); err != nil {
		return results.FailureResult[*StartResult, error](err), nil
	}
	if err := validateNonEmpty("image url", hiddenImageURL); err != nil {
		return results.FailureResult[*StartResult, error](err), nil
	}

	cfg := s.challengeConfig(config)
	reopened := false

	_, err := s.stateRepo.Initialize(ctx, db, challengeID, cfg)
	if errors.Is(err, arcadeerrors.ErrAlreadyExists) {
		existing, getErr := s.stateRepo.GetForUpdate(ctx, db, challengeID)
		if getErr != nil {
			return domainOrInfra[*StartResult](getErr, "failed to load challenge state")
		}
		if existing.State != statedb.StateLocked {
			return results.FailureResult[*StartResult, error](
				fmt.Errorf("%w: challenge %s is %s; lock or reset it before starting again", arcadeerrors.ErrAlreadyExists, challengeID, existing.State)), nil
		}
		if err := s.clearChallengeData(ctx, db, challengeID, nil); err != nil {
			return results.OperationResult[*StartResult, error]{}, err
		}
		_, err = s.stateRepo.Reopen(ctx, db, challengeID, cfg)
		reopened = true
	}
	if err != nil {
		return domainOrInfra[*StartResult](err, "failed to initialize challenge")
	}

	hidden, err := s.addHiddenImage(ctx, db, challengeID, hiddenImageURL, prompt)
	if err != nil || hidden.IsFailure() {
		// Propagating the failure rolls back the initialize above.
		if err == nil {
			return results.FailureResult[*StartResult, error](*hidden.Failure), nil
		}
		return results.OperationResult[*StartResult, error]{}, err
	}

	rec, err := s.stateRepo.Get(ctx, db, challengeID)
	if err != nil {
		return results.OperationResult[*StartResult, error]{}, fmt.Errorf("failed to reload challenge state: %w", err)
	}

	s.logger.InfoContext(ctx, "Challenge started",
		attr.ExtractCorrelationID(ctx),
		attr.ChallengeID(challengeID),
		attr.Bool("reopened", reopened),
	)

	return results.SuccessResult[*StartResult, error](&StartResult{
		ChallengeID:    challengeID,
		State:          rec.State,
		HiddenImageSet: rec.Metadata.Bool(statedb.MetaHiddenImageSet),
		Reopened:       reopened,
		Config:         rec.Config,
	}), nil
}

// ResetChallenge clears the challenge's scores and images, clears its
// metadata and end time, and locks it. Teams are deleted unless
// preserveTeams is set.
func (s *PicPerfectService) ResetChallenge(ctx context.Context, challengeID string, preserveTeams bool) (*ResetResult, error) {
	res, err := operations.Execute(s.runner, ctx, "ResetChallenge", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ResetResult, error], error) {
		if _, err := s.loadChallengeForUpdate(ctx, db, challengeID); err != nil {
			return domainOrInfra[*ResetResult](err, "failed to load challenge state")
		}

		out := &ResetResult{ChallengeID: challengeID, State: statedb.StateLocked, TeamsPreserved: preserveTeams}
		if err := s.clearChallengeData(ctx, db, challengeID, out); err != nil {
			return results.OperationResult[*ResetResult, error]{}, err
		}

		locked := statedb.StateLocked
		err := s.stateRepo.Update(ctx, db, challengeID, statedb.StateUpdate{
			State:           &locked,
			Metadata:        statedb.Metadata{},
			ReplaceMetadata: true,
			ClearEndTime:    true,
		})
		if err != nil {
			return domainOrInfra[*ResetResult](err, "failed to lock challenge")
		}

		if !preserveTeams {
			n, err := s.teamRepo.DeleteAll(ctx, db)
			if err != nil {
				return results.OperationResult[*ResetResult, error]{}, fmt.Errorf("failed to delete teams: %w", err)
			}
			out.TeamsRemoved = n
		}
		return results.SuccessResult[*ResetResult, error](out), nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TopicChallengeReset, challengeID, res)
	return res, nil
}

// clearChallengeData removes the challenge's leaderboard rows and images.
// Counts are recorded on out when it is non-nil.
func (s *PicPerfectService) clearChallengeData(ctx context.Context, db bun.IDB, challengeID string, out *ResetResult) error {
	entries, err := s.leaderboardRepo.ResetLeaderboard(ctx, db, challengeID)
	if err != nil {
		return fmt.Errorf("failed to reset leaderboard: %w", err)
	}
	images, err := s.imagesRepo.DeleteAllImages(ctx, db, challengeID)
	if err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	if out != nil {
		out.LeaderboardEntriesRemoved = entries
		out.ImagesRemoved = images
	}
	return nil
}
