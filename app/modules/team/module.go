package team

import (
	"context"
	"log/slog"
	"sync"

	teamservice "github.com/Black-And-White-Club/pic-perfect/app/modules/team/application"
	teamhandlers "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/handlers"
	teamdb "github.com/Black-And-White-Club/pic-perfect/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the team registry module.
type Module struct {
	service    *teamservice.TeamService
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates the team module and registers /api/teams.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	repo teamdb.Repository,
	httpRouter chi.Router,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing team module")

	service := teamservice.NewTeamService(repo, logger, obs.Metrics, obs.Tracer, db)

	if httpRouter != nil {
		handlers := teamhandlers.NewTeamHandlers(service, logger, obs.Tracer)
		limiter := httpapi.NewRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		clientKey := httpapi.ClientKey(cfg.HTTP.TrustProxy)
		httpRouter.Route("/api/teams", func(r chi.Router) {
			r.Use(httpapi.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(httpapi.RateLimitMiddleware(limiter, clientKey, logger))
			handlers.MountRoutes(r)
		})
	}

	return &Module{
		service: service,
		logger:  logger,
	}
}

// Run starts the team module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting team module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Team module goroutine stopped")
}

// Close stops the team module.
func (m *Module) Close() error {
	m.logger.Info("Stopping team module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the team service for use by other modules.
func (m *Module) GetService() teamservice.Service {
	return m.service
}
