package picperfectservice

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Rules are the scoring constants. A challenge's config snapshot overrides
// them per challenge.
type Rules struct {
	DeceptionPointsPerVote int
	DiscoveryPoints        int

	// PoolSecret keys voting pool entry ids. A random secret is drawn
	// when empty, so ids then change on restart.
	PoolSecret string
}

// DefaultRules returns the standard scoring.
func DefaultRules() Rules {
	return Rules{DeceptionPointsPerVote: 3, DiscoveryPoints: 10}
}

// Repositories groups the stores the service orchestrates.
type Repositories struct {
	State       statedb.Repository
	Images      imagesdb.Repository
	Leaderboard leaderboarddb.Repository
	Teams       teamdb.Repository
}

// PicPerfectService implements Service and AdminService.
type PicPerfectService struct {
	stateRepo       statedb.Repository
	imagesRepo      imagesdb.Repository
	leaderboardRepo leaderboarddb.Repository
	teamRepo        teamdb.Repository
	publisher       message.Publisher
	logger          *slog.Logger
	metrics         observability.ChallengeMetrics
	runner          *operations.Runner
	rules           Rules
	poolKey         []byte
}

// NewPicPerfectService creates a new PicPerfectService. publisher may be nil,
// in which case no events are emitted.
func NewPicPerfectService(
	repos Repositories,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics observability.ChallengeMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	rules Rules,
) *PicPerfectService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if rules.PoolSecret == "" {
		rules.PoolSecret = rand.Text()
	}
	return &PicPerfectService{
		stateRepo:       repos.State,
		imagesRepo:      repos.Images,
		leaderboardRepo: repos.Leaderboard,
		teamRepo:        repos.Teams,
		publisher:       publisher,
		logger:          logger,
		metrics:         metrics,
		runner: &operations.Runner{
			Service: "PicPerfectService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
			DB:      db,
		},
		rules:   rules,
		poolKey: []byte(rules.PoolSecret),
	}
}

var (
	_ Service      = (*PicPerfectService)(nil)
	_ AdminService = (*PicPerfectService)(nil)
)

// rulesFor reads the scoring snapshot stored on the challenge.
func (s *PicPerfectService) rulesFor(rec *statedb.ChallengeRecord) Rules {
	return Rules{
		DeceptionPointsPerVote: rec.Config.Int(statedb.ConfigDeceptionPointsPerVote, s.rules.DeceptionPointsPerVote),
		DiscoveryPoints:        rec.Config.Int(statedb.ConfigDiscoveryPoints, s.rules.DiscoveryPoints),
	}
}

// loadChallenge reads the state row under a share lock held until the
// operation's transaction ends.
func (s *PicPerfectService) loadChallenge(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error) {
	if err := validateNonEmpty("challenge id", challengeID); err != nil {
		return nil, err
	}
	return s.stateRepo.GetForShare(ctx, db, challengeID)
}

// loadChallengeForUpdate reads the state row under a write lock, so
// operations that change the state row run one at a time per challenge.
func (s *PicPerfectService) loadChallengeForUpdate(ctx context.Context, db bun.IDB, challengeID string) (*statedb.ChallengeRecord, error) {
	if err := validateNonEmpty("challenge id", challengeID); err != nil {
		return nil, err
	}
	return s.stateRepo.GetForUpdate(ctx, db, challengeID)
}

// requireState fails with ErrInvalidState unless rec is in one of allowed.
func requireState(rec *statedb.ChallengeRecord, operation string, allowed ...statedb.ChallengeState) error {
	for _, st := range allowed {
		if rec.State == st {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, st := range allowed {
		names[i] = st.String()
	}
	return fmt.Errorf("%w: %s requires challenge %s to be %s, but it is %s",
		arcadeerrors.ErrInvalidState, operation, rec.ChallengeID, strings.Join(names, " or "), rec.State)
}

// domainOrInfra routes a store error: taxonomy errors become failures,
// anything else is returned as an infrastructure error with context.
func domainOrInfra[S any](err error, action string) (results.OperationResult[S, error], error) {
	if arcadeerrors.IsDomain(err) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, fmt.Errorf("%s: %w", action, err)
}

func validateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", arcadeerrors.ErrValidation, field)
	}
	return nil
}
