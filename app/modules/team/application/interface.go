package teamservice

import (
	"context"
)

// Service manages the team registry.
type Service interface {
	RegisterTeam(ctx context.Context, teamName string, members []string) (*TeamInfo, error)
	GetTeam(ctx context.Context, teamName string) (*TeamInfo, error)
	ListTeams(ctx context.Context) ([]TeamInfo, error)
	UpdateMembers(ctx context.Context, teamName string, members []string) (*TeamInfo, error)
	DeleteTeam(ctx context.Context, teamName string) error
	// TouchTeam records activity for a team.
	TouchTeam(ctx context.Context, teamName string) error
}
