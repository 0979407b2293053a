package teamservice

import (
	"fmt"
	"strings"
	"time"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
)

// MaxTeamNameLength bounds team names.
const MaxTeamNameLength = 64

// TeamInfo is the public view of a team.
type TeamInfo struct {
	Name       string    `json:"name"`
	Members    []string  `json:"members"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

func toTeamInfo(t *teamdb.Team) *TeamInfo {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return &TeamInfo{
		Name:       t.TeamName,
		Members:    members,
		CreatedAt:  t.CreatedAt,
		LastActive: t.LastActive,
	}
}

// ValidateTeamName rejects empty, oversized and reserved names.
func ValidateTeamName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: team name is required", arcadeerrors.ErrValidation)
	case trimmed != name:
		return fmt.Errorf("%w: team name must not have leading or trailing spaces", arcadeerrors.ErrValidation)
	case len(name) > MaxTeamNameLength:
		return fmt.Errorf("%w: team name exceeds %d characters", arcadeerrors.ErrValidation, MaxTeamNameLength)
	case name == imagesdb.HiddenImageKey:
		return fmt.Errorf("%w: team name %q is reserved", arcadeerrors.ErrValidation, name)
	}
	return nil
}

// normalizeMembers trims, drops blanks and removes duplicates, keeping order.
func normalizeMembers(members []string) []string {
	out := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
