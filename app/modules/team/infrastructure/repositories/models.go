package teamdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Team is a registered team. Teams outlive individual challenges.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	TeamName   string    `bun:"team_name,pk"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	LastActive time.Time `bun:"last_active,nullzero,notnull,default:current_timestamp"`
	Members    []string  `bun:"members,array,nullzero,notnull,default:'{}'"`
}
