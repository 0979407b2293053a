package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// LeaderboardEntry is one team's score in one challenge.
type LeaderboardEntry struct {
	bun.BaseModel `bun:"table:pp_leaderboard,alias:lb"`

	ChallengeID     string    `bun:"challenge_id,pk"`
	TeamName        string    `bun:"team_name,pk"`
	Seq             int64     `bun:"seq,autoincrement"` // insertion order, used for stable ties
	DeceptionPoints int       `bun:"deception_points,notnull"`
	DiscoveryPoints int       `bun:"discovery_points,notnull"`
	TotalPoints     int       `bun:"total_points,notnull"`
	ImageURL        string    `bun:"image_url,notnull"`
	VotedForHidden  bool      `bun:"voted_for_hidden,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ScoreUpdate is an upsert-merge. Nil fields keep their stored value, or
// take the zero value on first insert.
type ScoreUpdate struct {
	DeceptionPoints *int
	DiscoveryPoints *int
	TotalPoints     *int
	VotedForHidden  *bool
	ImageURL        *string
}
