package teamhandlers

import (
	"context"

	teamservice "github.com/Black-And-White-Club/pic-perfect/app/modules/team/application"
)

// FakeService implements teamservice.Service for handler testing.
type FakeService struct {
	trace []string

	RegisterTeamFunc  func(ctx context.Context, teamName string, members []string) (*teamservice.TeamInfo, error)
	GetTeamFunc       func(ctx context.Context, teamName string) (*teamservice.TeamInfo, error)
	ListTeamsFunc     func(ctx context.Context) ([]teamservice.TeamInfo, error)
	UpdateMembersFunc func(ctx context.Context, teamName string, members []string) (*teamservice.TeamInfo, error)
	DeleteTeamFunc    func(ctx context.Context, teamName string) error
	TouchTeamFunc     func(ctx context.Context, teamName string) error
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

func (f *FakeService) RegisterTeam(ctx context.Context, teamName string, members []string) (*teamservice.TeamInfo, error) {
	f.record("RegisterTeam")
	if f.RegisterTeamFunc != nil {
		return f.RegisterTeamFunc(ctx, teamName, members)
	}
	return &teamservice.TeamInfo{Name: teamName, Members: members}, nil
}

func (f *FakeService) GetTeam(ctx context.Context, teamName string) (*teamservice.TeamInfo, error) {
	f.record("GetTeam")
	if f.GetTeamFunc != nil {
		return f.GetTeamFunc(ctx, teamName)
	}
	return &teamservice.TeamInfo{Name: teamName, Members: []string{}}, nil
}

func (f *FakeService) ListTeams(ctx context.Context) ([]teamservice.TeamInfo, error) {
	f.record("ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx)
	}
	return []teamservice.TeamInfo{}, nil
}

func (f *FakeService) UpdateMembers(ctx context.Context, teamName string, members []string) (*teamservice.TeamInfo, error) {
	f.record("UpdateMembers")
	if f.UpdateMembersFunc != nil {
		return f.UpdateMembersFunc(ctx, teamName, members)
	}
	return &teamservice.TeamInfo{Name: teamName, Members: members}, nil
}

func (f *FakeService) DeleteTeam(ctx context.Context, teamName string) error {
	f.record("DeleteTeam")
	if f.DeleteTeamFunc != nil {
		return f.DeleteTeamFunc(ctx, teamName)
	}
	return nil
}

func (f *FakeService) TouchTeam(ctx context.Context, teamName string) error {
	f.record("TouchTeam")
	if f.TouchTeamFunc != nil {
		return f.TouchTeamFunc(ctx, teamName)
	}
	return nil
}

var _ teamservice.Service = (*FakeService)(nil)
