package picperfectservice

import (
	"context"
	"sync"
	"time"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake State Repo
// ------------------------

type FakeStateRepo struct {
	trace []string

	GetFunc                func(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error)
	GetForShareFunc        func(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error)
	GetForUpdateFunc       func(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error)
	InitializeFunc         func(ctx context.Context, db bun.IDB, challengeID string, config statedb.Config) (*statedb.ChallengeRecord, error)
	ReopenFunc             func(ctx context.Context, db bun.IDB, challengeID string, config statedb.Config) (*statedb.ChallengeRecord, error)
	UpdateFunc             func(ctx context.Context, db bun.IDB, challengeID string, update statedb.StateUpdate) error
	CompareAndSetStateFunc func(ctx context.Context, db bun.IDB, challengeID string, from, to statedb.ChallengeState, update statedb.StateUpdate) error
	LockFunc               func(ctx context.Context, db bun.IDB, challengeID string) error
	UnlockFunc             func(ctx context.Context, db bun.IDB, challengeID string, target statedb.ChallengeState) error
	FinalizeFunc           func(ctx context.Context, db bun.IDB, challengeID string, endTime *time.Time) error
	ListAllFunc            func(ctx context.Context, db bun.IDB) ([]statedb.ChallengeRecord, error)
}

func NewFakeStateRepo() *FakeStateRepo {
	return &FakeStateRepo{trace: []string{}}
}

func (f *FakeStateRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStateRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStateRepo) Get(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, challengeID)
	}
	return nil, statedb.ErrNotFound
}

func (f *FakeStateRepo) GetForShare(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error) {
	f.record("GetForShare")
	if f.GetForShareFunc != nil {
		return f.GetForShareFunc(ctx, db, challengeID)
	}
	return nil, statedb.ErrNotFound
}

func (f *FakeStateRepo) GetForUpdate(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error) {
	f.record("GetForUpdate")
	if f.GetForUpdateFunc != nil {
		return f.GetForUpdateFunc(ctx, db, challengeID)
	}
	return nil, statedb.ErrNotFound
}

func (f *FakeStateRepo) Initialize(ctx context.Context, db bun.IDB, challengeID string, config statedb.Config) (*statedb.ChallengeRecord, error) {
	f.record("Initialize")
	if f.InitializeFunc != nil {
		return f.InitializeFunc(ctx, db, challengeID, config)
	}
	return &statedb.ChallengeRecord{ChallengeID: challengeID, State: statedb.StateSubmission, Config: config}, nil
}

func (f *FakeStateRepo) Reopen(ctx context.Context, db bun.IDB, challengeID string, config statedb.Config) (*statedb.ChallengeRecord, error) {
	f.record("Reopen")
	if f.ReopenFunc != nil {
		return f.ReopenFunc(ctx, db, challengeID, config)
	}
	return &statedb.ChallengeRecord{ChallengeID: challengeID, State: statedb.StateSubmission, Config: config}, nil
}

func (f *FakeStateRepo) Update(ctx context.Context, db bun.IDB, challengeID string, update statedb.StateUpdate) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, challengeID, update)
	}
	return nil
}

func (f *FakeStateRepo) CompareAndSetState(ctx context.Context, db bun.IDB, challengeID string, from, to statedb.ChallengeState, update statedb.StateUpdate) error {
	f.record("CompareAndSetState")
	if f.CompareAndSetStateFunc != nil {
		return f.CompareAndSetStateFunc(ctx, db, challengeID, from, to, update)
	}
	return nil
}

func (f *FakeStateRepo) Lock(ctx context.Context, db bun.IDB, challengeID string) error {
	f.record("Lock")
	if f.LockFunc != nil {
		return f.LockFunc(ctx, db, challengeID)
	}
	return nil
}

func (f *FakeStateRepo) Unlock(ctx context.Context, db bun.IDB, challengeID string, target statedb.ChallengeState) error {
	f.record("Unlock")
	if f.UnlockFunc != nil {
		return f.UnlockFunc(ctx, db, challengeID, target)
	}
	return nil
}

func (f *FakeStateRepo) Finalize(ctx context.Context, db bun.IDB, challengeID string, endTime *time.Time) error {
	f.record("Finalize")
	if f.FinalizeFunc != nil {
		return f.FinalizeFunc(ctx, db, challengeID, endTime)
	}
	return nil
}

func (f *FakeStateRepo) IsActive(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	f.record("IsActive")
	rec, err := f.Get(ctx, db, challengeID)
	if err != nil {
		return false, nil
	}
	return rec.IsActive(), nil
}

func (f *FakeStateRepo) IsLocked(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	f.record("IsLocked")
	rec, err := f.Get(ctx, db, challengeID)
	if err != nil {
		return false, nil
	}
	return rec.State == statedb.StateLocked, nil
}

func (f *FakeStateRepo) IsComplete(ctx context.Context, db bun.IDB, challengeID string) (bool, error) {
	f.record("IsComplete")
	rec, err := f.Get(ctx, db, challengeID)
	if err != nil {
		return false, nil
	}
	return rec.State == statedb.StateComplete, nil
}

func (f *FakeStateRepo) ListAll(ctx context.Context, db bun.IDB) ([]statedb.ChallengeRecord, error) {
	f.record("ListAll")
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx, db)
	}
	return []statedb.ChallengeRecord{}, nil
}

// ------------------------
// Fake Images Repo
// ------------------------

type FakeImagesRepo struct {
	trace    []string
	maxVotes int

	AddImageFunc            func(ctx context.Context, db bun.IDB, challengeID, teamName, imageURL, prompt string) (*imagesdb.ImageSubmission, error)
	AddHiddenImageFunc      func(ctx context.Context, db bun.IDB, challengeID, imageURL, prompt string) (*imagesdb.ImageSubmission, error)
	VoteOnImageFunc         func(ctx context.Context, db bun.IDB, challengeID, votingTeam string, targets []string) (*imagesdb.VoteOutcome, error)
	GetAllImagesFunc        func(ctx context.Context, db bun.IDB, challengeID string, excludeTeams ...string) ([]imagesdb.ImageSubmission, error)
	GetHiddenImageFunc      func(ctx context.Context, db bun.IDB, challengeID string) (*imagesdb.ImageSubmission, error)
	GetTeamImageFunc        func(ctx context.Context, db bun.IDB, challengeID, teamName string) (*imagesdb.ImageSubmission, error)
	GetVotesGivenByTeamFunc func(ctx context.Context, db bun.IDB, challengeID, teamName string) ([]string, error)
	GetVotesRemainingFunc   func(ctx context.Context, db bun.IDB, challengeID, teamName string) (int, error)
	DeleteAllImagesFunc     func(ctx context.Context, db bun.IDB, challengeID string) (int, error)
}

func NewFakeImagesRepo() *FakeImagesRepo {
	return &FakeImagesRepo{trace: []string{}, maxVotes: imagesdb.DefaultMaxVotesPerTeam}
}

func (f *FakeImagesRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeImagesRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeImagesRepo) AddImage(ctx context.Context, db bun.IDB, challengeID, teamName, imageURL, prompt string) (*imagesdb.ImageSubmission, error) {
	f.record("AddImage")
	if f.AddImageFunc != nil {
		return f.AddImageFunc(ctx, db, challengeID, teamName, imageURL, prompt)
	}
	return &imagesdb.ImageSubmission{ChallengeID: challengeID, TeamName: teamName, ImageURL: imageURL, Prompt: prompt}, nil
}

func (f *FakeImagesRepo) AddHiddenImage(ctx context.Context, db bun.IDB, challengeID, imageURL, prompt string) (*imagesdb.ImageSubmission, error) {
	f.record("AddHiddenImage")
	if f.AddHiddenImageFunc != nil {
		return f.AddHiddenImageFunc(ctx, db, challengeID, imageURL, prompt)
	}
	return &imagesdb.ImageSubmission{ChallengeID: challengeID, TeamName: imagesdb.HiddenImageKey, ImageURL: imageURL, Prompt: prompt, IsHidden: true}, nil
}

func (f *FakeImagesRepo) VoteOnImage(ctx context.Context, db bun.IDB, challengeID, votingTeam string, targets []string) (*imagesdb.VoteOutcome, error) {
	f.record("VoteOnImage")
	if f.VoteOnImageFunc != nil {
		return f.VoteOnImageFunc(ctx, db, challengeID, votingTeam, targets)
	}
	return &imagesdb.VoteOutcome{Voted: targets, VotesGiven: targets, VotesRemaining: f.maxVotes - len(targets)}, nil
}

func (f *FakeImagesRepo) GetAllImages(ctx context.Context, db bun.IDB, challengeID string, excludeTeams ...string) ([]imagesdb.ImageSubmission, error) {
	f.record("GetAllImages")
	if f.GetAllImagesFunc != nil {
		return f.GetAllImagesFunc(ctx, db, challengeID, excludeTeams...)
	}
	return []imagesdb.ImageSubmission{}, nil
}

func (f *FakeImagesRepo) GetHiddenImage(ctx context.Context, db bun.IDB, challengeID string) (*imagesdb.ImageSubmission, error) {
	f.record("GetHiddenImage")
	if f.GetHiddenImageFunc != nil {
		return f.GetHiddenImageFunc(ctx, db, challengeID)
	}
	return nil, imagesdb.ErrNotFound
}

func (f *FakeImagesRepo) GetTeamImage(ctx context.Context, db bun.IDB, challengeID, teamName string) (*imagesdb.ImageSubmission, error) {
	f.record("GetTeamImage")
	if f.GetTeamImageFunc != nil {
		return f.GetTeamImageFunc(ctx, db, challengeID, teamName)
	}
	return nil, imagesdb.ErrNotFound
}

func (f *FakeImagesRepo) GetVotesGivenByTeam(ctx context.Context, db bun.IDB, challengeID, teamName string) ([]string, error) {
	f.record("GetVotesGivenByTeam")
	if f.GetVotesGivenByTeamFunc != nil {
		return f.GetVotesGivenByTeamFunc(ctx, db, challengeID, teamName)
	}
	return []string{}, nil
}

func (f *FakeImagesRepo) GetVotesRemaining(ctx context.Context, db bun.IDB, challengeID, teamName string) (int, error) {
	f.record("GetVotesRemaining")
	if f.GetVotesRemainingFunc != nil {
		return f.GetVotesRemainingFunc(ctx, db, challengeID, teamName)
	}
	return f.maxVotes, nil
}

func (f *FakeImagesRepo) DeleteAllImages(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
	f.record("DeleteAllImages")
	if f.DeleteAllImagesFunc != nil {
		return f.DeleteAllImagesFunc(ctx, db, challengeID)
	}
	return 0, nil
}

func (f *FakeImagesRepo) MaxVotesPerTeam() int {
	return f.maxVotes
}

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type FakeLeaderboardRepo struct {
	trace []string

	UpdateScoreFunc      func(ctx context.Context, db bun.IDB, challengeID, teamName string, update leaderboarddb.ScoreUpdate) (*leaderboarddb.LeaderboardEntry, error)
	GetLeaderboardFunc   func(ctx context.Context, db bun.IDB, challengeID string) ([]leaderboarddb.LeaderboardEntry, error)
	GetTeamScoreFunc     func(ctx context.Context, db bun.IDB, challengeID, teamName string) (*leaderboarddb.LeaderboardEntry, error)
	ResetLeaderboardFunc func(ctx context.Context, db bun.IDB, challengeID string) (int, error)
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{trace: []string{}}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeaderboardRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeaderboardRepo) UpdateScore(ctx context.Context, db bun.IDB, challengeID, teamName string, update leaderboarddb.ScoreUpdate) (*leaderboarddb.LeaderboardEntry, error) {
	f.record("UpdateScore")
	if f.UpdateScoreFunc != nil {
		return f.UpdateScoreFunc(ctx, db, challengeID, teamName, update)
	}
	return &leaderboarddb.LeaderboardEntry{ChallengeID: challengeID, TeamName: teamName}, nil
}

func (f *FakeLeaderboardRepo) GetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) ([]leaderboarddb.LeaderboardEntry, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, db, challengeID)
	}
	return []leaderboarddb.LeaderboardEntry{}, nil
}

func (f *FakeLeaderboardRepo) GetTeamScore(ctx context.Context, db bun.IDB, challengeID, teamName string) (*leaderboarddb.LeaderboardEntry, error) {
	f.record("GetTeamScore")
	if f.GetTeamScoreFunc != nil {
		return f.GetTeamScoreFunc(ctx, db, challengeID, teamName)
	}
	return nil, leaderboarddb.ErrNotFound
}

func (f *FakeLeaderboardRepo) ResetLeaderboard(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
	f.record("ResetLeaderboard")
	if f.ResetLeaderboardFunc != nil {
		return f.ResetLeaderboardFunc(ctx, db, challengeID)
	}
	return 0, nil
}

// ------------------------
// Fake Team Repo
// ------------------------

type FakeTeamRepo struct {
	trace []string

	CreateFunc    func(ctx context.Context, db bun.IDB, team *teamdb.Team) error
	GetFunc       func(ctx context.Context, db bun.IDB, teamName string) (*teamdb.Team, error)
	ListAllFunc   func(ctx context.Context, db bun.IDB) ([]teamdb.Team, error)
	DeleteAllFunc func(ctx context.Context, db bun.IDB) (int, error)
}

func NewFakeTeamRepo() *FakeTeamRepo {
	return &FakeTeamRepo{trace: []string{}}
}

func (f *FakeTeamRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTeamRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTeamRepo) Create(ctx context.Context, db bun.IDB, team *teamdb.Team) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, team)
	}
	return nil
}

func (f *FakeTeamRepo) Get(ctx context.Context, db bun.IDB, teamName string) (*teamdb.Team, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, teamName)
	}
	return &teamdb.Team{TeamName: teamName}, nil
}

func (f *FakeTeamRepo) UpdateMembers(ctx context.Context, db bun.IDB, teamName string, members []string) error {
	f.record("UpdateMembers")
	return nil
}

func (f *FakeTeamRepo) Touch(ctx context.Context, db bun.IDB, teamName string) error {
	f.record("Touch")
	return nil
}

func (f *FakeTeamRepo) Delete(ctx context.Context, db bun.IDB, teamName string) error {
	f.record("Delete")
	return nil
}

func (f *FakeTeamRepo) ListAll(ctx context.Context, db bun.IDB) ([]teamdb.Team, error) {
	f.record("ListAll")
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx, db)
	}
	return []teamdb.Team{}, nil
}

func (f *FakeTeamRepo) Count(ctx context.Context, db bun.IDB) (int, error) {
	f.record("Count")
	teams, err := f.ListAll(ctx, db)
	return len(teams), err
}

func (f *FakeTeamRepo) DeleteAll(ctx context.Context, db bun.IDB) (int, error) {
	f.record("DeleteAll")
	if f.DeleteAllFunc != nil {
		return f.DeleteAllFunc(ctx, db)
	}
	return 0, nil
}

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	published map[string][]*message.Message

	PublishFunc func(topic string, msgs ...*message.Message) error
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{published: map[string][]*message.Message{}}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	p.published[topic] = append(p.published[topic], msgs...)
	p.mu.Unlock()
	if p.PublishFunc != nil {
		return p.PublishFunc(topic, msgs...)
	}
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Messages(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.published[topic]...)
}

// Interface assertions
var (
	_ statedb.Repository       = (*FakeStateRepo)(nil)
	_ imagesdb.Repository      = (*FakeImagesRepo)(nil)
	_ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)
	_ teamdb.Repository        = (*FakeTeamRepo)(nil)
	_ message.Publisher        = (*FakePublisher)(nil)
)
