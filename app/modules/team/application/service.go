package teamservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// TeamService implements the Service interface.
type TeamService struct {
	repo   teamdb.Repository
	logger *slog.Logger
	runner *operations.Runner
}

// NewTeamService creates a new TeamService.
func NewTeamService(
	repo teamdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamService{
		repo:   repo,
		logger: logger,
		runner: &operations.Runner{
			Service: "TeamService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
	}
}

var _ Service = (*TeamService)(nil)

// RegisterTeam creates a team.
func (s *TeamService) RegisterTeam(ctx context.Context, teamName string, members []string) (*TeamInfo, error) {
	return operations.Execute(s.runner, ctx, "RegisterTeam", teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TeamInfo, error], error) {
		return s.registerTeamLogic(ctx, db, teamName, members)
	})
}

func (s *TeamService) registerTeamLogic(ctx context.Context, db bun.IDB, teamName string, members []string) (results.OperationResult[*TeamInfo, error], error) {
	if err := ValidateTeamName(teamName); err != nil {
		return results.FailureResult[*TeamInfo, error](err), nil
	}

	team := &teamdb.Team{TeamName: teamName, Members: normalizeMembers(members)}
	if err := s.repo.Create(ctx, db, team); err != nil {
		if errors.Is(err, teamdb.ErrAlreadyExists) {
			return results.FailureResult[*TeamInfo, error](err), nil
		}
		return results.OperationResult[*TeamInfo, error]{}, fmt.Errorf("failed to register team: %w", err)
	}

	// Re-read for the database-assigned timestamps.
	created, err := s.repo.Get(ctx, db, teamName)
	if err != nil {
		return results.OperationResult[*TeamInfo, error]{}, fmt.Errorf("failed to load registered team: %w", err)
	}
	return results.SuccessResult[*TeamInfo, error](toTeamInfo(created)), nil
}

// GetTeam retrieves a team by name.
func (s *TeamService) GetTeam(ctx context.Context, teamName string) (*TeamInfo, error) {
	return operations.Execute(s.runner, ctx, "GetTeam", teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TeamInfo, error], error) {
		team, err := s.repo.Get(ctx, db, teamName)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[*TeamInfo, error](err), nil
			}
			return results.OperationResult[*TeamInfo, error]{}, fmt.Errorf("failed to get team: %w", err)
		}
		return results.SuccessResult[*TeamInfo, error](toTeamInfo(team)), nil
	})
}

// ListTeams returns all teams in registration order.
func (s *TeamService) ListTeams(ctx context.Context) ([]TeamInfo, error) {
	return operations.Execute(s.runner, ctx, "ListTeams", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]TeamInfo, error], error) {
		teams, err := s.repo.ListAll(ctx, db)
		if err != nil {
			return results.OperationResult[[]TeamInfo, error]{}, fmt.Errorf("failed to list teams: %w", err)
		}
		infos := make([]TeamInfo, 0, len(teams))
		for i := range teams {
			infos = append(infos, *toTeamInfo(&teams[i]))
		}
		return results.SuccessResult[[]TeamInfo, error](infos), nil
	})
}

// UpdateMembers replaces a team's member list.
func (s *TeamService) UpdateMembers(ctx context.Context, teamName string, members []string) (*TeamInfo, error) {
	return operations.Execute(s.runner, ctx, "UpdateMembers", teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TeamInfo, error], error) {
		if err := s.repo.UpdateMembers(ctx, db, teamName, normalizeMembers(members)); err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[*TeamInfo, error](err), nil
			}
			return results.OperationResult[*TeamInfo, error]{}, fmt.Errorf("failed to update members: %w", err)
		}
		team, err := s.repo.Get(ctx, db, teamName)
		if err != nil {
			return results.OperationResult[*TeamInfo, error]{}, fmt.Errorf("failed to load team: %w", err)
		}
		return results.SuccessResult[*TeamInfo, error](toTeamInfo(team)), nil
	})
}

// DeleteTeam removes a team from the registry. Its submissions are kept.
func (s *TeamService) DeleteTeam(ctx context.Context, teamName string) error {
	_, err := operations.Execute(s.runner, ctx, "DeleteTeam", teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.Delete(ctx, db, teamName); err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[struct{}, error](err), nil
			}
			return results.OperationResult[struct{}, error]{}, fmt.Errorf("failed to delete team: %w", err)
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}

// TouchTeam updates the team's last activity time.
func (s *TeamService) TouchTeam(ctx context.Context, teamName string) error {
	_, err := operations.Execute(s.runner, ctx, "TouchTeam", teamName, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		if err := s.repo.Touch(ctx, db, teamName); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	})
	return err
}
