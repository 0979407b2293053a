package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/db/bundb"
	"github.com/Black-And-White-Club/pic-perfect/integration_tests/containers"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
)

// TestEnvironment holds all resources needed for integration testing.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	DB            *bun.DB
	DBService     *bundb.DBService
	Config        *config.Config
	Observability observability.Observability
}

var (
	globalEnv     *TestEnvironment
	globalEnvErr  error
	globalEnvOnce sync.Once
)

// GetTestEnv returns the package-wide environment, starting Postgres on
// first use. Tests are skipped in -short mode.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	globalEnvOnce.Do(func() {
		globalEnv, globalEnvErr = NewTestEnvironment(context.Background())
	})
	if globalEnvErr != nil {
		t.Fatalf("failed to set up integration environment: %v", globalEnvErr)
	}
	return globalEnv
}

// NewTestEnvironment starts a Postgres container, applies every migration and
// builds the stores.
func NewTestEnvironment(parent context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(parent)

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	obs := observability.NewTestObservability()
	if err := bundb.MigrateAll(ctx, db, obs.Logger); err != nil {
		db.Close()
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cfg := &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		HTTP: config.HTTPConfig{
			Addr:           "127.0.0.1:0",
			AllowedOrigins: []string{"*"},
			RateLimit:      1000,
			RateBurst:      1000,
		},
		PicPerfect: config.PicPerfectConfig{
			DefaultChallengeID:     config.DefaultChallengeID,
			MaxVotesPerTeam:        config.DefaultMaxVotesPerTeam,
			DeceptionPointsPerVote: config.DefaultDeceptionPointsPerVote,
			DiscoveryPoints:        config.DefaultDiscoveryPoints,
		},
		Observability: config.ObservabilityConfig{Environment: "test"},
	}

	return &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		PgContainer:   pgContainer,
		DB:            db,
		DBService:     bundb.NewDBService(db, cfg.PicPerfect.MaxVotesPerTeam),
		Config:        cfg,
		Observability: obs,
	}, nil
}

// Reset truncates every table so each test starts from an empty database.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}

// Shutdown releases the shared environment. Call it from TestMain.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	if globalEnv.DB != nil {
		_ = globalEnv.DB.Close()
	}
	if globalEnv.PgContainer != nil {
		_ = globalEnv.PgContainer.Terminate(ctx)
	}
	globalEnv.CancelContext()
	globalEnv = nil
}
