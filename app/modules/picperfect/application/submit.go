package picperfectservice

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamservice "github.com/Black-And-White-Club/pic-perfect/app/modules/team/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
)

// SubmitTeamImage stores a team's image while the challenge is in SUBMISSION.
func (s *PicPerfectService) SubmitTeamImage(ctx context.Context, challengeID, teamName, imageURL, prompt string) (*SubmissionResult, error) {
	res, err := operations.Execute(s.runner, ctx, "SubmitTeamImage", challengeID+"/"+teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SubmissionResult, error], error) {
		return s.submitTeamImageLogic(ctx, db, challengeID, teamName, imageURL, prompt)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TopicImageSubmitted, challengeID, res)
	return res, nil
}

func (s *PicPerfectService) submitTeamImageLogic(ctx context.Context, db bun.IDB, challengeID, teamName, imageURL, prompt string) (results.OperationResult[*SubmissionResult, error], error) {
	if err := teamservice.ValidateTeamName(teamName); err != nil {
		return results.FailureResult[*SubmissionResult, error](err), nil
	}
	if err := validateNonEmpty("image url", imageURL); err != nil {
		return results.FailureResult[*SubmissionResult, error](err), nil
	}

	rec, err := s.loadChallenge(ctx, db, challengeID)
	if err != nil {
		return domainOrInfra[*SubmissionResult](err, "failed to load challenge state")
	}
	if err := requireState(rec, "image submission", statedb.StateSubmission); err != nil {
		return results.FailureResult[*SubmissionResult, error](err), nil
	}

	if _, err := s.teamRepo.Get(ctx, db, teamName); err != nil {
		return domainOrInfra[*SubmissionResult](err, "failed to look up team")
	}

	img, err := s.imagesRepo.AddImage(ctx, db, challengeID, teamName, imageURL, prompt)
	if err != nil {
		return domainOrInfra[*SubmissionResult](err, "failed to store image")
	}

	// Seeding the entry here makes leaderboard insertion order follow
	// submission order.
	url := img.ImageURL
	if _, err := s.leaderboardRepo.UpdateScore(ctx, db, challengeID, teamName, leaderboarddb.ScoreUpdate{ImageURL: &url}); err != nil {
		return results.OperationResult[*SubmissionResult, error]{}, fmt.Errorf("failed to seed leaderboard entry: %w", err)
	}

	if err := s.teamRepo.Touch(ctx, db, teamName); err != nil {
		return results.OperationResult[*SubmissionResult, error]{}, err
	}

	return results.SuccessResult[*SubmissionResult, error](&SubmissionResult{
		ChallengeID: challengeID,
		TeamName:    img.TeamName,
		ImageURL:    img.ImageURL,
		Prompt:      img.Prompt,
		SubmittedAt: img.SubmittedAt,
	}), nil
}

// SubmitHiddenImage stores the hidden original. Allowed while the challenge
// is LOCKED or in SUBMISSION.
func (s *PicPerfectService) SubmitHiddenImage(ctx context.Context, challengeID, imageURL, prompt string) (*HiddenImageResult, error) {
	res, err := operations.Execute(s.runner, ctx, "SubmitHiddenImage", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*HiddenImageResult, error], error) {
		rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*HiddenImageResult](err, "failed to load challenge state")
		}
		if err := requireState(rec, "hidden image submission", statedb.StateSubmission, statedb.StateLocked); err != nil {
			return results.FailureResult[*HiddenImageResult, error](err), nil
		}
		return s.addHiddenImage(ctx, db, challengeID, imageURL, prompt)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TopicHiddenImageSubmitted, challengeID, map[string]any{"hiddenImageSet": true})
	return res, nil
}

// addHiddenImage stores the image and flags it in the challenge metadata.
func (s *PicPerfectService) addHiddenImage(ctx context.Context, db bun.IDB, challengeID, imageURL, prompt string) (results.OperationResult[*HiddenImageResult, error], error) {
	if err := validateNonEmpty("image url", imageURL); err != nil {
		return results.FailureResult[*HiddenImageResult, error](err), nil
	}

	img, err := s.imagesRepo.AddHiddenImage(ctx, db, challengeID, imageURL, prompt)
	if err != nil {
		return domainOrInfra[*HiddenImageResult](err, "failed to store hidden image")
	}

	err = s.stateRepo.Update(ctx, db, challengeID, statedb.StateUpdate{
		Metadata: statedb.Metadata{
			statedb.MetaHiddenImageSet:      true,
			statedb.MetaHiddenImageRevealed: false,
		},
	})
	if err != nil {
		return domainOrInfra[*HiddenImageResult](err, "failed to flag hidden image")
	}

	return results.SuccessResult[*HiddenImageResult, error](&HiddenImageResult{
		ChallengeID:    challengeID,
		ImageURL:       img.ImageURL,
		Prompt:         img.Prompt,
		SubmittedAt:    img.SubmittedAt,
		HiddenImageSet: true,
	}), nil
}
