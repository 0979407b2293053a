package statedb

import (
	"fmt"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/uptrace/bun"
)

// ChallengeState is a step of the challenge lifecycle.
type ChallengeState string

const (
	StateLocked     ChallengeState = "locked"
	StateSubmission ChallengeState = "submission"
	StateVoting     ChallengeState = "voting"
	StateScoring    ChallengeState = "scoring"
	StateComplete   ChallengeState = "complete"
)

// AllStates lists the states in lifecycle order.
var AllStates = []ChallengeState{StateLocked, StateSubmission, StateVoting, StateScoring, StateComplete}

// Order returns the position of s on the forward path, or -1.
func (s ChallengeState) Order() int {
	for i, st := range AllStates {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is a known state.
func (s ChallengeState) IsValid() bool {
	return s.Order() >= 0
}

// AtLeast reports whether s is other or later on the forward path.
func (s ChallengeState) AtLeast(other ChallengeState) bool {
	return s.Order() >= other.Order()
}

func (s ChallengeState) String() string {
	return string(s)
}

// ParseChallengeState validates raw.
func ParseChallengeState(raw string) (ChallengeState, error) {
	s := ChallengeState(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown challenge state %q", arcadeerrors.ErrValidation, raw)
	}
	return s, nil
}

// Recognized metadata keys.
const (
	MetaHiddenImageSet      = "hiddenImageSet"
	MetaHiddenImageRevealed = "hiddenImageRevealed"
)

// Metadata is the open key/value bag on a challenge. Unknown keys are kept
// verbatim.
type Metadata map[string]any

// Bool reads a boolean key; missing or non-boolean values read as false.
func (m Metadata) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

// Recognized config keys.
const (
	ConfigMaxVotesPerTeam        = "maxVotesPerTeam"
	ConfigDeceptionPointsPerVote = "deceptionPointsPerVote"
	ConfigDiscoveryPoints        = "discoveryPoints"
	ConfigTitle                  = "title"
)

// Config holds the rules snapshot a challenge was started with.
type Config map[string]any

// Int reads an integer key, accepting the float64 that JSON decoding
// produces. Missing or non-numeric values yield def.
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// String reads a string key.
func (c Config) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// ChallengeRecord is one challenge's lifecycle row.
type ChallengeRecord struct {
	bun.BaseModel `bun:"table:challenge_states,alias:cs"`

	ChallengeID string         `bun:"challenge_id,pk"`
	State       ChallengeState `bun:"state,notnull"`
	StartTime   time.Time      `bun:"start_time,nullzero,notnull,default:current_timestamp"`
	EndTime     *time.Time     `bun:"end_time"`
	Metadata    Metadata       `bun:"metadata,type:jsonb,notnull"`
	Config      Config         `bun:"config,type:jsonb,notnull"`
	Version     int64          `bun:"version,notnull,default:1"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// IsActive reports whether teams can currently interact with the challenge.
func (r *ChallengeRecord) IsActive() bool {
	switch r.State {
	case StateSubmission, StateVoting, StateScoring:
		return true
	default:
		return false
	}
}

// StateUpdate is a partial update. Nil or empty fields are left untouched;
// Metadata and Config are merged key by key unless the Replace flags are set.
type StateUpdate struct {
	State           *ChallengeState
	Metadata        Metadata
	ReplaceMetadata bool
	Config          Config
	ReplaceConfig   bool
	EndTime         *time.Time
	ClearEndTime    bool
}
