package picperfectservice

import (
	"context"
	"fmt"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
)

// teamScore is one team's computed points.
type teamScore struct {
	TeamName        string
	ImageURL        string
	VotesReceived   int
	DeceptionPoints int
	DiscoveryPoints int
	VotedForHidden  bool
}

func (t teamScore) Total() int {
	return t.DeceptionPoints + t.DiscoveryPoints
}

// computeScores is a pure function of the submissions: deception points per
// vote received, and a discovery bonus for voting for the hidden image.
func computeScores(images []imagesdb.ImageSubmission, rules Rules) []teamScore {
	scores := make([]teamScore, 0, len(images))
	for _, img := range images {
		if img.IsHidden || img.TeamName == imagesdb.HiddenImageKey {
			continue
		}
		votedHidden := img.HasVotedFor(imagesdb.HiddenImageKey)
		discovery := 0
		if votedHidden {
			discovery = rules.DiscoveryPoints
		}
		scores = append(scores, teamScore{
			TeamName:        img.TeamName,
			ImageURL:        img.ImageURL,
			VotesReceived:   len(img.VotesReceived),
			DeceptionPoints: rules.DeceptionPointsPerVote * len(img.VotesReceived),
			DiscoveryPoints: discovery,
			VotedForHidden:  votedHidden,
		})
	}
	return scores
}

// CalculateScores writes every team's score. Safe to repeat.
func (s *PicPerfectService) CalculateScores(ctx context.Context, challengeID string) (*ScoringResult, error) {
	res, err := operations.Execute(s.runner, ctx, "CalculateScores", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ScoringResult, error], error) {
		rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*ScoringResult](err, "failed to load challenge state")
		}
		if err := requireState(rec, "score calculation", statedb.StateScoring); err != nil {
			return results.FailureResult[*ScoringResult, error](err), nil
		}

		entries, err := s.calculateScores(ctx, db, rec)
		if err != nil {
			return results.OperationResult[*ScoringResult, error]{}, err
		}
		return results.SuccessResult[*ScoringResult, error](&ScoringResult{ChallengeID: challengeID, Entries: entries}), nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TopicScoresCalculated, challengeID, res)
	return res, nil
}

// calculateScores upserts one entry per submitting team and returns the
// ranked leaderboard.
func (s *PicPerfectService) calculateScores(ctx context.Context, db bun.IDB, rec *statedb.ChallengeRecord) ([]ScoreEntry, error) {
	images, err := s.imagesRepo.GetAllImages(ctx, db, rec.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	for _, sc := range computeScores(images, s.rulesFor(rec)) {
		deception, discovery, total := sc.DeceptionPoints, sc.DiscoveryPoints, sc.Total()
		votedHidden, url := sc.VotedForHidden, sc.ImageURL
		_, err := s.leaderboardRepo.UpdateScore(ctx, db, rec.ChallengeID, sc.TeamName, leaderboarddb.ScoreUpdate{
			DeceptionPoints: &deception,
			DiscoveryPoints: &discovery,
			TotalPoints:     &total,
			VotedForHidden:  &votedHidden,
			ImageURL:        &url,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write score for %s: %w", sc.TeamName, err)
		}
	}

	return s.rankedEntries(ctx, db, rec.ChallengeID, images)
}

// rankedEntries reads the leaderboard and assigns 1-based ranks in stored
// order. images supplies vote counts; nil means they are loaded here.
func (s *PicPerfectService) rankedEntries(ctx context.Context, db bun.IDB, challengeID string, images []imagesdb.ImageSubmission) ([]ScoreEntry, error) {
	if images == nil {
		var err error
		images, err = s.imagesRepo.GetAllImages(ctx, db, challengeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load submissions: %w", err)
		}
	}
	submitted := submittedTeams(images)

	rows, err := s.leaderboardRepo.GetLeaderboard(ctx, db, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]ScoreEntry, 0, len(rows))
	for i, row := range rows {
		votes := 0
		if img, ok := submitted[row.TeamName]; ok {
			votes = len(img.VotesReceived)
		}
		entries = append(entries, ScoreEntry{
			Rank:            i + 1,
			TeamName:        row.TeamName,
			DeceptionPoints: row.DeceptionPoints,
			DiscoveryPoints: row.DiscoveryPoints,
			TotalPoints:     row.TotalPoints,
			VotesReceived:   votes,
			VotedForHidden:  row.VotedForHidden,
			ImageURL:        row.ImageURL,
		})
	}
	return entries, nil
}

// FinalizeChallenge scores the challenge, completes it and reveals the
// hidden image. Calling it again on a COMPLETE challenge succeeds without
// changing anything.
func (s *PicPerfectService) FinalizeChallenge(ctx context.Context, challengeID string) (*FinalizeResult, error) {
	res, err := operations.Execute(s.runner, ctx, "FinalizeChallenge", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*FinalizeResult, error], error) {
		rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*FinalizeResult](err, "failed to load challenge state")
		}

		if rec.State == statedb.StateComplete {
			rows, err := s.leaderboardRepo.GetLeaderboard(ctx, db, challengeID)
			if err != nil {
				return results.OperationResult[*FinalizeResult, error]{}, fmt.Errorf("failed to load leaderboard: %w", err)
			}
			return results.SuccessResult[*FinalizeResult, error](&FinalizeResult{
				ChallengeID:     challengeID,
				State:           statedb.StateComplete,
				TeamsScored:     len(rows),
				EndTime:         rec.EndTime,
				AlreadyComplete: true,
			}), nil
		}
		if err := requireState(rec, "finalize", statedb.StateScoring); err != nil {
			return results.FailureResult[*FinalizeResult, error](err), nil
		}

		return s.finalize(ctx, db, rec)
	})
	if err != nil {
		return nil, err
	}
	if !res.AlreadyComplete {
		s.metrics.RecordStateTransition(ctx, statedb.StateScoring.String(), statedb.StateComplete.String())
		s.publish(ctx, TopicStateChanged, challengeID, TransitionResult{
			ChallengeID:   challengeID,
			PreviousState: statedb.StateScoring,
			CurrentState:  statedb.StateComplete,
		})
	}
	return res, nil
}

// finalize runs SCORING -> COMPLETE for a record already known to be in
// SCORING.
func (s *PicPerfectService) finalize(ctx context.Context, db bun.IDB, rec *statedb.ChallengeRecord) (results.OperationResult[*FinalizeResult, error], error) {
	entries, err := s.calculateScores(ctx, db, rec)
	if err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, err
	}

	err = s.stateRepo.CompareAndSetState(ctx, db, rec.ChallengeID, statedb.StateScoring, statedb.StateComplete, statedb.StateUpdate{})
	if err != nil {
		return domainOrInfra[*FinalizeResult](err, "failed to complete challenge")
	}
	if err := s.stateRepo.Finalize(ctx, db, rec.ChallengeID, nil); err != nil {
		return domainOrInfra[*FinalizeResult](err, "failed to record end time")
	}
	err = s.stateRepo.Update(ctx, db, rec.ChallengeID, statedb.StateUpdate{
		Metadata: statedb.Metadata{statedb.MetaHiddenImageRevealed: true},
	})
	if err != nil {
		return domainOrInfra[*FinalizeResult](err, "failed to reveal hidden image")
	}

	final, err := s.stateRepo.Get(ctx, db, rec.ChallengeID)
	if err != nil {
		return results.OperationResult[*FinalizeResult, error]{}, fmt.Errorf("failed to reload challenge state: %w", err)
	}

	return results.SuccessResult[*FinalizeResult, error](&FinalizeResult{
		ChallengeID: rec.ChallengeID,
		State:       final.State,
		TeamsScored: len(entries),
		EndTime:     final.EndTime,
	}), nil
}
