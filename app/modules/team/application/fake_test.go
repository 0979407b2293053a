package teamservice

import (
	"context"

	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Team Repo
// ------------------------

type FakeTeamRepo struct {
	trace []string

	CreateFunc        func(ctx context.Context, db bun.IDB, team *teamdb.Team) error
	GetFunc           func(ctx context.Context, db bun.IDB, teamName string) (*teamdb.Team, error)
	UpdateMembersFunc func(ctx context.Context, db bun.IDB, teamName string, members []string) error
	TouchFunc         func(ctx context.Context, db bun.IDB, teamName string) error
	DeleteFunc        func(ctx context.Context, db bun.IDB, teamName string) error
	ListAllFunc       func(ctx context.Context, db bun.IDB) ([]teamdb.Team, error)
	CountFunc         func(ctx context.Context, db bun.IDB) (int, error)
	DeleteAllFunc     func(ctx context.Context, db bun.IDB) (int, error)
}

func NewFakeTeamRepo() *FakeTeamRepo {
	return &FakeTeamRepo{
		trace: []string{},
	}
}

func (f *FakeTeamRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTeamRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

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
	return nil, teamdb.ErrNotFound
}

func (f *FakeTeamRepo) UpdateMembers(ctx context.Context, db bun.IDB, teamName string, members []string) error {
	f.record("UpdateMembers")
	if f.UpdateMembersFunc != nil {
		return f.UpdateMembersFunc(ctx, db, teamName, members)
	}
	return nil
}

func (f *FakeTeamRepo) Touch(ctx context.Context, db bun.IDB, teamName string) error {
	f.record("Touch")
	if f.TouchFunc != nil {
		return f.TouchFunc(ctx, db, teamName)
	}
	return nil
}

func (f *FakeTeamRepo) Delete(ctx context.Context, db bun.IDB, teamName string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, teamName)
	}
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
	if f.CountFunc != nil {
		return f.CountFunc(ctx, db)
	}
	return 0, nil
}

func (f *FakeTeamRepo) DeleteAll(ctx context.Context, db bun.IDB) (int, error) {
	f.record("DeleteAll")
	if f.DeleteAllFunc != nil {
		return f.DeleteAllFunc(ctx, db)
	}
	return 0, nil
}

// Interface assertion
var _ teamdb.Repository = (*FakeTeamRepo)(nil)
