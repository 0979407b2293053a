package picperfecthandlers

import (
	"context"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
)

// FakeService implements picperfectservice.Service and
// picperfectservice.AdminService for handler testing.
type FakeService struct {
	trace []string

	SubmitTeamImageFunc          func(ctx context.Context, challengeID, teamName, imageURL, prompt string) (*picperfectservice.SubmissionResult, error)
	SubmitHiddenImageFunc        func(ctx context.Context, challengeID, imageURL, prompt string) (*picperfectservice.HiddenImageResult, error)
	CastVotesFunc                func(ctx context.Context, challengeID, teamName string, targets []string) (*picperfectservice.VoteResult, error)
	GetVotingPoolFunc            func(ctx context.Context, challengeID, teamName string) ([]picperfectservice.PoolEntry, error)
	ResolvePoolEntriesFunc       func(ctx context.Context, challengeID, teamName string, entryIDs []string) ([]string, error)
	CalculateScoresFunc          func(ctx context.Context, challengeID string) (*picperfectservice.ScoringResult, error)
	FinalizeChallengeFunc        func(ctx context.Context, challengeID string) (*picperfectservice.FinalizeResult, error)
	TransitionChallengeStateFunc func(ctx context.Context, challengeID string, target statedb.ChallengeState) (*picperfectservice.TransitionResult, error)
	GetTeamStatusFunc            func(ctx context.Context, challengeID, teamName string) (*picperfectservice.TeamStatus, error)
	GetLeaderboardFunc           func(ctx context.Context, challengeID string) (*picperfectservice.LeaderboardView, error)
	GetSubmissionStatusFunc      func(ctx context.Context, challengeID string) (*picperfectservice.SubmissionStatus, error)
	GetVotingStatusFunc          func(ctx context.Context, challengeID string) (*picperfectservice.VotingStatus, error)
	GetChallengeStatusFunc       func(ctx context.Context, challengeID string) (*picperfectservice.ChallengeStatus, error)
	StartChallengeFunc           func(ctx context.Context, challengeID, hiddenImageURL, prompt string, config statedb.Config) (*picperfectservice.StartResult, error)
	ResetChallengeFunc           func(ctx context.Context, challengeID string, preserveTeams bool) (*picperfectservice.ResetResult, error)
	LockChallengeFunc            func(ctx context.Context, challengeID string) (*picperfectservice.TransitionResult, error)
	UnlockChallengeFunc          func(ctx context.Context, challengeID string, target statedb.ChallengeState) (*picperfectservice.TransitionResult, error)
	ListChallengesFunc           func(ctx context.Context) ([]picperfectservice.ChallengeStatus, error)
	ExportLeaderboardXLSXFunc    func(ctx context.Context, challengeID string) ([]byte, error)
	RenderLeaderboardChartFunc   func(ctx context.Context, challengeID string) ([]byte, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) SubmitTeamImage(ctx context.Context, challengeID, teamName, imageURL, prompt string) (*picperfectservice.SubmissionResult, error) {
	f.record("SubmitTeamImage")
	if f.SubmitTeamImageFunc != nil {
		return f.SubmitTeamImageFunc(ctx, challengeID, teamName, imageURL, prompt)
	}
	return &picperfectservice.SubmissionResult{ChallengeID: challengeID, TeamName: teamName}, nil
}

func (f *FakeService) SubmitHiddenImage(ctx context.Context, challengeID, imageURL, prompt string) (*picperfectservice.HiddenImageResult, error) {
	f.record("SubmitHiddenImage")
	if f.SubmitHiddenImageFunc != nil {
		return f.SubmitHiddenImageFunc(ctx, challengeID, imageURL, prompt)
	}
	return &picperfectservice.HiddenImageResult{ChallengeID: challengeID}, nil
}

func (f *FakeService) CastVotes(ctx context.Context, challengeID, teamName string, targets []string) (*picperfectservice.VoteResult, error) {
	f.record("CastVotes")
	if f.CastVotesFunc != nil {
		return f.CastVotesFunc(ctx, challengeID, teamName, targets)
	}
	return &picperfectservice.VoteResult{ChallengeID: challengeID, TeamName: teamName}, nil
}

func (f *FakeService) GetVotingPool(ctx context.Context, challengeID, teamName string) ([]picperfectservice.PoolEntry, error) {
	f.record("GetVotingPool")
	if f.GetVotingPoolFunc != nil {
		return f.GetVotingPoolFunc(ctx, challengeID, teamName)
	}
	return nil, nil
}

func (f *FakeService) ResolvePoolEntries(ctx context.Context, challengeID, teamName string, entryIDs []string) ([]string, error) {
	f.record("ResolvePoolEntries")
	if f.ResolvePoolEntriesFunc != nil {
		return f.ResolvePoolEntriesFunc(ctx, challengeID, teamName, entryIDs)
	}
	return entryIDs, nil
}

func (f *FakeService) CalculateScores(ctx context.Context, challengeID string) (*picperfectservice.ScoringResult, error) {
	f.record("CalculateScores")
	if f.CalculateScoresFunc != nil {
		return f.CalculateScoresFunc(ctx, challengeID)
	}
	return &picperfectservice.ScoringResult{ChallengeID: challengeID}, nil
}

func (f *FakeService) FinalizeChallenge(ctx context.Context, challengeID string) (*picperfectservice.FinalizeResult, error) {
	f.record("FinalizeChallenge")
	if f.FinalizeChallengeFunc != nil {
		return f.FinalizeChallengeFunc(ctx, challengeID)
	}
	return &picperfectservice.FinalizeResult{ChallengeID: challengeID}, nil
}

func (f *FakeService) TransitionChallengeState(ctx context.Context, challengeID string, target statedb.ChallengeState) (*picperfectservice.TransitionResult, error) {
	f.record("TransitionChallengeState")
	if f.TransitionChallengeStateFunc != nil {
		return f.TransitionChallengeStateFunc(ctx, challengeID, target)
	}
	return &picperfectservice.TransitionResult{ChallengeID: challengeID, CurrentState: target}, nil
}

func (f *FakeService) CanTransitionToVoting(ctx context.Context, challengeID string) (bool, error) {
	f.record("CanTransitionToVoting")
	return true, nil
}

func (f *FakeService) CanTransitionToScoring(ctx context.Context, challengeID string) (bool, error) {
	f.record("CanTransitionToScoring")
	return true, nil
}

func (f *FakeService) GetTeamStatus(ctx context.Context, challengeID, teamName string) (*picperfectservice.TeamStatus, error) {
	f.record("GetTeamStatus")
	if f.GetTeamStatusFunc != nil {
		return f.GetTeamStatusFunc(ctx, challengeID, teamName)
	}
	return &picperfectservice.TeamStatus{ChallengeID: challengeID, TeamName: teamName}, nil
}

func (f *FakeService) GetLeaderboard(ctx context.Context, challengeID string) (*picperfectservice.LeaderboardView, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, challengeID)
	}
	return &picperfectservice.LeaderboardView{ChallengeID: challengeID}, nil
}

func (f *FakeService) GetSubmissionStatus(ctx context.Context, challengeID string) (*picperfectservice.SubmissionStatus, error) {
	f.record("GetSubmissionStatus")
	if f.GetSubmissionStatusFunc != nil {
		return f.GetSubmissionStatusFunc(ctx, challengeID)
	}
	return &picperfectservice.SubmissionStatus{ChallengeID: challengeID}, nil
}

func (f *FakeService) GetVotingStatus(ctx context.Context, challengeID string) (*picperfectservice.VotingStatus, error) {
	f.record("GetVotingStatus")
	if f.GetVotingStatusFunc != nil {
		return f.GetVotingStatusFunc(ctx, challengeID)
	}
	return &picperfectservice.VotingStatus{ChallengeID: challengeID}, nil
}

func (f *FakeService) GetChallengeStatus(ctx context.Context, challengeID string) (*picperfectservice.ChallengeStatus, error) {
	f.record("GetChallengeStatus")
	if f.GetChallengeStatusFunc != nil {
		return f.GetChallengeStatusFunc(ctx, challengeID)
	}
	return &picperfectservice.ChallengeStatus{ChallengeID: challengeID}, nil
}

func (f *FakeService) StartChallenge(ctx context.Context, challengeID, hiddenImageURL, prompt string, config statedb.Config) (*picperfectservice.StartResult, error) {
	f.record("StartChallenge")
	if f.StartChallengeFunc != nil {
		return f.StartChallengeFunc(ctx, challengeID, hiddenImageURL, prompt, config)
	}
	return &picperfectservice.StartResult{ChallengeID: challengeID, State: statedb.StateSubmission}, nil
}

func (f *FakeService) ResetChallenge(ctx context.Context, challengeID string, preserveTeams bool) (*picperfectservice.ResetResult, error) {
	f.record("ResetChallenge")
	if f.ResetChallengeFunc != nil {
		return f.ResetChallengeFunc(ctx, challengeID, preserveTeams)
	}
	return &picperfectservice.ResetResult{ChallengeID: challengeID, State: statedb.StateLocked, TeamsPreserved: preserveTeams}, nil
}

func (f *FakeService) LockChallenge(ctx context.Context, challengeID string) (*picperfectservice.TransitionResult, error) {
	f.record("LockChallenge")
	if f.LockChallengeFunc != nil {
		return f.LockChallengeFunc(ctx, challengeID)
	}
	return &picperfectservice.TransitionResult{ChallengeID: challengeID, CurrentState: statedb.StateLocked}, nil
}

func (f *FakeService) UnlockChallenge(ctx context.Context, challengeID string, target statedb.ChallengeState) (*picperfectservice.TransitionResult, error) {
	f.record("UnlockChallenge")
	if f.UnlockChallengeFunc != nil {
		return f.UnlockChallengeFunc(ctx, challengeID, target)
	}
	return &picperfectservice.TransitionResult{ChallengeID: challengeID, PreviousState: statedb.StateLocked, CurrentState: target}, nil
}

func (f *FakeService) ListChallenges(ctx context.Context) ([]picperfectservice.ChallengeStatus, error) {
	f.record("ListChallenges")
	if f.ListChallengesFunc != nil {
		return f.ListChallengesFunc(ctx)
	}
	return []picperfectservice.ChallengeStatus{}, nil
}

func (f *FakeService) ExportLeaderboardXLSX(ctx context.Context, challengeID string) ([]byte, error) {
	f.record("ExportLeaderboardXLSX")
	if f.ExportLeaderboardXLSXFunc != nil {
		return f.ExportLeaderboardXLSXFunc(ctx, challengeID)
	}
	return []byte("xlsx"), nil
}

func (f *FakeService) RenderLeaderboardChart(ctx context.Context, challengeID string) ([]byte, error) {
	f.record("RenderLeaderboardChart")
	if f.RenderLeaderboardChartFunc != nil {
		return f.RenderLeaderboardChartFunc(ctx, challengeID)
	}
	return []byte("png"), nil
}

var (
	_ picperfectservice.Service      = (*FakeService)(nil)
	_ picperfectservice.AdminService = (*FakeService)(nil)
)
