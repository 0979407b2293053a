package picperfectservice

import (
	"context"
	"errors"
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

// GetTeamStatus merges a team's submission, votes and score. It works in
// every state.
func (s *PicPerfectService) GetTeamStatus(ctx context.Context, challengeID, teamName string) (*TeamStatus, error) {
	return operations.Execute(s.runner, ctx, "GetTeamStatus", challengeID+"/"+teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TeamStatus, error], error) {
		if err := teamservice.ValidateTeamName(teamName); err != nil {
			return results.FailureResult[*TeamStatus, error](err), nil
		}
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*TeamStatus](err, "failed to load challenge state")
		}

		status := &TeamStatus{
			ChallengeID: challengeID,
			TeamName:    teamName,
			State:       rec.State,
			VotesGiven:  []string{},
		}

		img, err := s.imagesRepo.GetTeamImage(ctx, db, challengeID, teamName)
		switch {
		case err == nil:
			status.HasSubmitted = true
			status.Submission = &SubmissionView{
				ImageURL:    img.ImageURL,
				Prompt:      img.Prompt,
				SubmittedAt: img.SubmittedAt,
			}
		case errors.Is(err, arcadeerrors.ErrNotFound):
		default:
			return results.OperationResult[*TeamStatus, error]{}, fmt.Errorf("failed to load team image: %w", err)
		}

		given, err := s.imagesRepo.GetVotesGivenByTeam(ctx, db, challengeID, teamName)
		if err != nil {
			return results.OperationResult[*TeamStatus, error]{}, fmt.Errorf("failed to load votes: %w", err)
		}
		if given != nil {
			status.VotesGiven = given
		}
		remaining, err := s.imagesRepo.GetVotesRemaining(ctx, db, challengeID, teamName)
		if err != nil {
			return results.OperationResult[*TeamStatus, error]{}, fmt.Errorf("failed to load remaining votes: %w", err)
		}
		status.VotesRemaining = remaining

		if status.HasSubmitted {
			entries, err := s.rankedEntries(ctx, db, challengeID, nil)
			if err != nil {
				return results.OperationResult[*TeamStatus, error]{}, err
			}
			for i := range entries {
				if entries[i].TeamName == teamName {
					status.Score = &entries[i]
					break
				}
			}
		}

		return results.SuccessResult[*TeamStatus, error](status), nil
	})
}

// GetLeaderboard returns ranked scores with the current state. The hidden
// image is included only once the challenge is COMPLETE.
func (s *PicPerfectService) GetLeaderboard(ctx context.Context, challengeID string) (*LeaderboardView, error) {
	return operations.Execute(s.runner, ctx, "GetLeaderboard", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*LeaderboardView, error], error) {
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*LeaderboardView](err, "failed to load challenge state")
		}

		images, err := s.imagesRepo.GetAllImages(ctx, db, challengeID)
		if err != nil {
			return results.OperationResult[*LeaderboardView, error]{}, fmt.Errorf("failed to load submissions: %w", err)
		}
		entries, err := s.rankedEntries(ctx, db, challengeID, images)
		if err != nil {
			return results.OperationResult[*LeaderboardView, error]{}, err
		}

		view := &LeaderboardView{
			ChallengeID: challengeID,
			State:       rec.State,
			Entries:     entries,
		}
		if rec.State == statedb.StateComplete {
			view.HiddenImage = hiddenImageView(images)
		}
		return results.SuccessResult[*LeaderboardView, error](view), nil
	})
}

func hiddenImageView(images []imagesdb.ImageSubmission) *HiddenImageView {
	for _, img := range images {
		if img.TeamName != imagesdb.HiddenImageKey {
			continue
		}
		votes := img.VotesReceived
		if votes == nil {
			votes = []string{}
		}
		return &HiddenImageView{ImageURL: img.ImageURL, Prompt: img.Prompt, VotesReceived: votes}
	}
	return nil
}

// GetSubmissionStatus diffs the team roster against submissions.
func (s *PicPerfectService) GetSubmissionStatus(ctx context.Context, challengeID string) (*SubmissionStatus, error) {
	return operations.Execute(s.runner, ctx, "GetSubmissionStatus", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SubmissionStatus, error], error) {
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*SubmissionStatus](err, "failed to load challenge state")
		}
		status, err := s.submissionStatus(ctx, db, rec)
		if err != nil {
			return results.OperationResult[*SubmissionStatus, error]{}, err
		}
		return results.SuccessResult[*SubmissionStatus, error](status), nil
	})
}

// submissionStatus backs both the status view and the voting guard: every
// registered team has submitted, and at least one team exists.
func (s *PicPerfectService) submissionStatus(ctx context.Context, db bun.IDB, rec *statedb.ChallengeRecord) (*SubmissionStatus, error) {
	teams, err := s.teamRepo.ListAll(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	images, err := s.imagesRepo.GetAllImages(ctx, db, rec.ChallengeID, imagesdb.HiddenImageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	submitted := submittedTeams(images)

	status := &SubmissionStatus{
		ChallengeID:  rec.ChallengeID,
		State:        rec.State,
		TotalTeams:   len(teams),
		PendingTeams: []string{},
	}
	for _, t := range teams {
		if _, ok := submitted[t.TeamName]; ok {
			status.TeamsSubmitted++
		} else {
			status.PendingTeams = append(status.PendingTeams, t.TeamName)
		}
	}
	status.CanTransitionToVoting = status.TotalTeams > 0 && len(status.PendingTeams) == 0
	return status, nil
}

// GetVotingStatus reports which submitting teams still hold votes.
func (s *PicPerfectService) GetVotingStatus(ctx context.Context, challengeID string) (*VotingStatus, error) {
	return operations.Execute(s.runner, ctx, "GetVotingStatus", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*VotingStatus, error], error) {
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*VotingStatus](err, "failed to load challenge state")
		}
		images, err := s.imagesRepo.GetAllImages(ctx, db, challengeID, imagesdb.HiddenImageKey)
		if err != nil {
			return results.OperationResult[*VotingStatus, error]{}, fmt.Errorf("failed to load submissions: %w", err)
		}
		submitted := submittedTeams(images)
		limit := s.imagesRepo.MaxVotesPerTeam()

		status := &VotingStatus{
			ChallengeID:            challengeID,
			State:                  rec.State,
			TotalTeams:             len(submitted),
			PendingTeams:           []string{},
			CanTransitionToScoring: rec.State == statedb.StateVoting,
		}
		for name, img := range submitted {
			if len(img.VotesGiven) >= limit {
				status.TeamsCompletedVoting++
			} else {
				status.PendingTeams = append(status.PendingTeams, name)
			}
		}
		sort.Strings(status.PendingTeams)
		status.AllVotesCast = status.TotalTeams > 0 && len(status.PendingTeams) == 0
		return results.SuccessResult[*VotingStatus, error](status), nil
	})
}

// GetChallengeStatus summarizes the challenge record.
func (s *PicPerfectService) GetChallengeStatus(ctx context.Context, challengeID string) (*ChallengeStatus, error) {
	return operations.Execute(s.runner, ctx, "GetChallengeStatus", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ChallengeStatus, error], error) {
		rec, err := s.loadChallenge(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*ChallengeStatus](err, "failed to load challenge state")
		}
		status := toChallengeStatus(rec)
		return results.SuccessResult[*ChallengeStatus, error](&status), nil
	})
}

// ListChallenges returns every challenge ordered by start time.
func (s *PicPerfectService) ListChallenges(ctx context.Context) ([]ChallengeStatus, error) {
	return operations.Execute(s.runner, ctx, "ListChallenges", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]ChallengeStatus, error], error) {
		records, err := s.stateRepo.ListAll(ctx, db)
		if err != nil {
			return results.OperationResult[[]ChallengeStatus, error]{}, err
		}
		out := make([]ChallengeStatus, 0, len(records))
		for i := range records {
			out = append(out, toChallengeStatus(&records[i]))
		}
		return results.SuccessResult[[]ChallengeStatus, error](out), nil
	})
}
