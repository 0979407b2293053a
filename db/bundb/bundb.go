package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	imagesdb "github.com/Black-And-White-Club/pic-perfect/app/modules/images/infrastructure/repositories"
	leaderboarddb "github.com/Black-And-White-Club/pic-perfect/app/modules/leaderboard/infrastructure/repositories"
	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService owns the connection pool and the stores built on it.
type DBService struct {
	StateDB       statedb.Repository
	ImagesDB      imagesdb.Repository
	LeaderboardDB leaderboarddb.Repository
	TeamDB        teamdb.Repository
	db            *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Repositories groups the stores for the challenge service.
func (dbService *DBService) Repositories() picperfectservice.Repositories {
	return picperfectservice.Repositories{
		State:       dbService.StateDB,
		Images:      dbService.ImagesDB,
		Leaderboard: dbService.LeaderboardDB,
		Teams:       dbService.TeamDB,
	}
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService connects to Postgres and builds every store.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, maxVotesPerTeam int, logger *slog.Logger) (*DBService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Initializing database service")

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	dbService := NewDBService(bunDB(sqldb), maxVotesPerTeam)
	logger.InfoContext(ctx, "Database service initialized")
	return dbService, nil
}

// NewDBService builds the stores on an existing handle.
func NewDBService(db *bun.DB, maxVotesPerTeam int) *DBService {
	db.RegisterModel(
		(*statedb.ChallengeRecord)(nil),
		(*imagesdb.ImageSubmission)(nil),
		(*leaderboarddb.LeaderboardEntry)(nil),
		(*teamdb.Team)(nil),
	)
	return &DBService{
		StateDB:       statedb.NewRepository(db),
		ImagesDB:      imagesdb.NewRepository(db, maxVotesPerTeam),
		LeaderboardDB: leaderboarddb.NewRepository(db),
		TeamDB:        teamdb.NewRepository(db),
		db:            db,
	}
}

// bunDB returns a new bun.DB for given sql.DB connection pool.
func bunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
