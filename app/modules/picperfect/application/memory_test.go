package picperfectservice

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/uptrace/bun"
)

// memoryGame backs the fakes with maps so scenario tests can drive a whole
// challenge without a database.
type memoryGame struct {
	State       *FakeStateRepo
	Images      *FakeImagesRepo
	Leaderboard *FakeLeaderboardRepo
	Teams       *FakeTeamRepo
	Publisher   *FakePublisher

	records map[string]*statedb.ChallengeRecord
	images  map[string][]*imagesdb.ImageSubmission
	board   map[string][]*leaderboarddb.LeaderboardEntry
	roster  []teamdb.Team
	seq     int64
	clock   time.Time
}

func newMemoryGame() *memoryGame {
	g := &memoryGame{
		State:       NewFakeStateRepo(),
		Images:      NewFakeImagesRepo(),
		Leaderboard: NewFakeLeaderboardRepo(),
		Teams:       NewFakeTeamRepo(),
		Publisher:   NewFakePublisher(),
		records:     map[string]*statedb.ChallengeRecord{},
		images:      map[string][]*imagesdb.ImageSubmission{},
		board:       map[string][]*leaderboarddb.LeaderboardEntry{},
		clock:       time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	g.installState()
	g.installImages()
	g.installLeaderboard()
	g.installTeams()
	return g
}

func (g *memoryGame) service() *PicPerfectService {
	obs := observability.NewTestObservability()
	return NewPicPerfectService(
		Repositories{State: g.State, Images: g.Images, Leaderboard: g.Leaderboard, Teams: g.Teams},
		g.Publisher,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		nil,
		testRules(),
	)
}

const testPoolSecret = "pool-secret-for-tests"

var testPoolKey = []byte(testPoolSecret)

func testRules() Rules {
	r := DefaultRules()
	r.PoolSecret = testPoolSecret
	return r
}

func (g *memoryGame) now() time.Time {
	g.clock = g.clock.Add(time.Second)
	return g.clock
}

func (g *memoryGame) registerTeams(names ...string) {
	for _, n := range names {
		g.roster = append(g.roster, teamdb.Team{TeamName: n, CreatedAt: g.now()})
	}
}

func (g *memoryGame) setState(challengeID string, state statedb.ChallengeState) {
	g.records[challengeID].State = state
}

func copyRecord(r *statedb.ChallengeRecord) *statedb.ChallengeRecord {
	out := *r
	out.Metadata = maps.Clone(r.Metadata)
	out.Config = maps.Clone(r.Config)
	return &out
}

func (g *memoryGame) installState() {
	get := func(ctx context.Context, db bun.IDB, id string) (*statedb.ChallengeRecord, error) {
		rec, ok := g.records[id]
		if !ok {
			return nil, fmt.Errorf("%w: challenge %s not initialized", statedb.ErrNotFound, id)
		}
		return copyRecord(rec), nil
	}
	g.State.GetFunc = get
	g.State.GetForShareFunc = get
	g.State.GetForUpdateFunc = get

	g.State.InitializeFunc = func(ctx context.Context, db bun.IDB, id string, config statedb.Config) (*statedb.ChallengeRecord, error) {
		if _, ok := g.records[id]; ok {
			return nil, fmt.Errorf("%w: %s", statedb.ErrAlreadyExists, id)
		}
		if config == nil {
			config = statedb.Config{}
		}
		g.records[id] = &statedb.ChallengeRecord{
			ChallengeID: id,
			State:       statedb.StateSubmission,
			StartTime:   g.now(),
			Metadata:    statedb.Metadata{},
			Config:      maps.Clone(config),
			Version:     1,
		}
		return copyRecord(g.records[id]), nil
	}

	g.State.ReopenFunc = func(ctx context.Context, db bun.IDB, id string, config statedb.Config) (*statedb.ChallengeRecord, error) {
		rec, ok := g.records[id]
		if !ok {
			return nil, statedb.ErrNotFound
		}
		if rec.State != statedb.StateLocked {
			return nil, fmt.Errorf("%w: only a locked challenge can be reopened", arcadeerrors.ErrInvalidState)
		}
		rec.State = statedb.StateSubmission
		rec.StartTime = g.now()
		rec.EndTime = nil
		rec.Metadata = statedb.Metadata{}
		if len(config) > 0 {
			rec.Config = maps.Clone(config)
		}
		rec.Version++
		return copyRecord(rec), nil
	}

	apply := func(rec *statedb.ChallengeRecord, u statedb.StateUpdate) {
		if u.State != nil {
			rec.State = *u.State
		}
		if u.ReplaceMetadata {
			rec.Metadata = statedb.Metadata{}
		}
		maps.Copy(rec.Metadata, u.Metadata)
		if u.ReplaceConfig {
			rec.Config = statedb.Config{}
		}
		maps.Copy(rec.Config, u.Config)
		switch {
		case u.ClearEndTime:
			rec.EndTime = nil
		case u.EndTime != nil:
			t := *u.EndTime
			rec.EndTime = &t
		}
		rec.Version++
	}

	g.State.UpdateFunc = func(ctx context.Context, db bun.IDB, id string, u statedb.StateUpdate) error {
		rec, ok := g.records[id]
		if !ok {
			return statedb.ErrNotFound
		}
		apply(rec, u)
		return nil
	}

	g.State.CompareAndSetStateFunc = func(ctx context.Context, db bun.IDB, id string, from, to statedb.ChallengeState, u statedb.StateUpdate) error {
		rec, ok := g.records[id]
		if !ok {
			return statedb.ErrNotFound
		}
		if rec.State != from {
			return fmt.Errorf("%w: challenge moved to %s", arcadeerrors.ErrInvalidTransition, rec.State)
		}
		u.State = &to
		apply(rec, u)
		return nil
	}

	g.State.LockFunc = func(ctx context.Context, db bun.IDB, id string) error {
		rec, ok := g.records[id]
		if !ok {
			return statedb.ErrNotFound
		}
		rec.State = statedb.StateLocked
		rec.Version++
		return nil
	}

	g.State.UnlockFunc = func(ctx context.Context, db bun.IDB, id string, target statedb.ChallengeState) error {
		if target == statedb.StateLocked {
			return arcadeerrors.ErrInvalidTransition
		}
		rec, ok := g.records[id]
		if !ok {
			return statedb.ErrNotFound
		}
		rec.State = target
		rec.Version++
		return nil
	}

	g.State.FinalizeFunc = func(ctx context.Context, db bun.IDB, id string, endTime *time.Time) error {
		rec, ok := g.records[id]
		if !ok {
			return statedb.ErrNotFound
		}
		end := g.now()
		if endTime != nil {
			end = *endTime
		}
		rec.State = statedb.StateComplete
		rec.EndTime = &end
		rec.Version++
		return nil
	}

	g.State.ListAllFunc = func(ctx context.Context, db bun.IDB) ([]statedb.ChallengeRecord, error) {
		out := make([]statedb.ChallengeRecord, 0, len(g.records))
		for _, rec := range g.records {
			out = append(out, *copyRecord(rec))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
		return out, nil
	}
}

func copyImage(img *imagesdb.ImageSubmission) imagesdb.ImageSubmission {
	out := *img
	out.VotesGiven = slices.Clone(img.VotesGiven)
	out.VotesReceived = slices.Clone(img.VotesReceived)
	return out
}

func (g *memoryGame) findImage(challengeID, team string) *imagesdb.ImageSubmission {
	for _, img := range g.images[challengeID] {
		if img.TeamName == team {
			return img
		}
	}
	return nil
}

func (g *memoryGame) installImages() {
	add := func(challengeID, team, url, prompt string, hidden bool) (*imagesdb.ImageSubmission, error) {
		if g.findImage(challengeID, team) != nil {
			return nil, fmt.Errorf("%w: %s already submitted", arcadeerrors.ErrConflict, team)
		}
		img := &imagesdb.ImageSubmission{
			ChallengeID:   challengeID,
			TeamName:      team,
			ImageURL:      url,
			Prompt:        prompt,
			SubmittedAt:   g.now(),
			IsHidden:      hidden,
			VotesReceived: []string{},
			VotesGiven:    []string{},
		}
		g.images[challengeID] = append(g.images[challengeID], img)
		out := copyImage(img)
		return &out, nil
	}
	g.Images.AddImageFunc = func(ctx context.Context, db bun.IDB, challengeID, team, url, prompt string) (*imagesdb.ImageSubmission, error) {
		return add(challengeID, team, url, prompt, false)
	}
	g.Images.AddHiddenImageFunc = func(ctx context.Context, db bun.IDB, challengeID, url, prompt string) (*imagesdb.ImageSubmission, error) {
		return add(challengeID, imagesdb.HiddenImageKey, url, prompt, true)
	}

	g.Images.VoteOnImageFunc = func(ctx context.Context, db bun.IDB, challengeID, voter string, targets []string) (*imagesdb.VoteOutcome, error) {
		v := g.findImage(challengeID, voter)
		submitted := map[string]bool{}
		for _, img := range g.images[challengeID] {
			submitted[img.TeamName] = true
		}
		batch := imagesdb.VoteBatch{
			VotingTeam:      voter,
			Targets:         targets,
			VoterSubmitted:  v != nil,
			SubmittedTeams:  submitted,
			MaxVotesPerTeam: g.Images.MaxVotesPerTeam(),
		}
		if v != nil {
			batch.ExistingGiven = v.VotesGiven
		}
		if err := imagesdb.ValidateVoteBatch(batch); err != nil {
			return nil, err
		}
		for _, t := range targets {
			target := g.findImage(challengeID, t)
			target.VotesReceived = append(target.VotesReceived, voter)
		}
		v.VotesGiven = append(v.VotesGiven, targets...)
		return &imagesdb.VoteOutcome{
			Voted:          slices.Clone(targets),
			VotesGiven:     slices.Clone(v.VotesGiven),
			VotesRemaining: max(0, g.Images.MaxVotesPerTeam()-len(v.VotesGiven)),
		}, nil
	}

	g.Images.GetAllImagesFunc = func(ctx context.Context, db bun.IDB, challengeID string, exclude ...string) ([]imagesdb.ImageSubmission, error) {
		out := []imagesdb.ImageSubmission{}
		for _, img := range g.images[challengeID] {
			if slices.Contains(exclude, img.TeamName) {
				continue
			}
			out = append(out, copyImage(img))
		}
		return out, nil
	}

	g.Images.GetHiddenImageFunc = func(ctx context.Context, db bun.IDB, challengeID string) (*imagesdb.ImageSubmission, error) {
		return g.Images.GetTeamImageFunc(ctx, db, challengeID, imagesdb.HiddenImageKey)
	}

	g.Images.GetTeamImageFunc = func(ctx context.Context, db bun.IDB, challengeID, team string) (*imagesdb.ImageSubmission, error) {
		img := g.findImage(challengeID, team)
		if img == nil {
			return nil, fmt.Errorf("%w: %s", imagesdb.ErrNotFound, team)
		}
		out := copyImage(img)
		return &out, nil
	}

	g.Images.GetVotesGivenByTeamFunc = func(ctx context.Context, db bun.IDB, challengeID, team string) ([]string, error) {
		img := g.findImage(challengeID, team)
		if img == nil {
			return []string{}, nil
		}
		return slices.Clone(img.VotesGiven), nil
	}

	g.Images.GetVotesRemainingFunc = func(ctx context.Context, db bun.IDB, challengeID, team string) (int, error) {
		given := 0
		if img := g.findImage(challengeID, team); img != nil {
			given = len(img.VotesGiven)
		}
		return max(0, g.Images.MaxVotesPerTeam()-given), nil
	}

	g.Images.DeleteAllImagesFunc = func(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
		n := len(g.images[challengeID])
		delete(g.images, challengeID)
		return n, nil
	}
}

func (g *memoryGame) installLeaderboard() {
	g.Leaderboard.UpdateScoreFunc = func(ctx context.Context, db bun.IDB, challengeID, team string, u leaderboarddb.ScoreUpdate) (*leaderboarddb.LeaderboardEntry, error) {
		var entry *leaderboarddb.LeaderboardEntry
		for _, e := range g.board[challengeID] {
			if e.TeamName == team {
				entry = e
			}
		}
		if entry == nil {
			g.seq++
			entry = &leaderboarddb.LeaderboardEntry{ChallengeID: challengeID, TeamName: team, Seq: g.seq}
			g.board[challengeID] = append(g.board[challengeID], entry)
		}
		if u.DeceptionPoints != nil {
			entry.DeceptionPoints = *u.DeceptionPoints
		}
		if u.DiscoveryPoints != nil {
			entry.DiscoveryPoints = *u.DiscoveryPoints
		}
		if u.TotalPoints != nil {
			entry.TotalPoints = *u.TotalPoints
		}
		if u.VotedForHidden != nil {
			entry.VotedForHidden = *u.VotedForHidden
		}
		if u.ImageURL != nil {
			entry.ImageURL = *u.ImageURL
		}
		out := *entry
		return &out, nil
	}

	g.Leaderboard.GetLeaderboardFunc = func(ctx context.Context, db bun.IDB, challengeID string) ([]leaderboarddb.LeaderboardEntry, error) {
		out := make([]leaderboarddb.LeaderboardEntry, 0, len(g.board[challengeID]))
		for _, e := range g.board[challengeID] {
			out = append(out, *e)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].TotalPoints != out[j].TotalPoints {
				return out[i].TotalPoints > out[j].TotalPoints
			}
			return out[i].Seq < out[j].Seq
		})
		return out, nil
	}

	g.Leaderboard.ResetLeaderboardFunc = func(ctx context.Context, db bun.IDB, challengeID string) (int, error) {
		n := len(g.board[challengeID])
		delete(g.board, challengeID)
		return n, nil
	}
}

func (g *memoryGame) installTeams() {
	g.Teams.GetFunc = func(ctx context.Context, db bun.IDB, name string) (*teamdb.Team, error) {
		for _, t := range g.roster {
			if t.TeamName == name {
				out := t
				return &out, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", teamdb.ErrNotFound, name)
	}
	g.Teams.ListAllFunc = func(ctx context.Context, db bun.IDB) ([]teamdb.Team, error) {
		return slices.Clone(g.roster), nil
	}
	g.Teams.DeleteAllFunc = func(ctx context.Context, db bun.IDB) (int, error) {
		n := len(g.roster)
		g.roster = nil
		return n, nil
	}
}
