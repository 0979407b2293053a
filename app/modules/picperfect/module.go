package picperfect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	picperfecthandlers "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/infrastructure/handlers"
	picperfectrouter "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/infrastructure/router"
	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the Pic Perfect game module.
type Module struct {
	config        *config.Config
	observability observability.Observability
	service       *picperfectservice.PicPerfectService
	handlers      *picperfecthandlers.PicPerfectHandlers
	eventRouter   *picperfectrouter.EventRouter
	cancelFunc    context.CancelFunc
	logger        *slog.Logger
}

// NewModule creates the Pic Perfect module and registers its HTTP routes and
// event handlers. httpRouter and msgRouter may be nil.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	repos picperfectservice.Repositories,
	eventBus eventbus.EventBus,
	msgRouter *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer
	metrics := obs.Metrics

	logger.InfoContext(ctx, "Initializing Pic Perfect module")

	rules := picperfectservice.Rules{
		DeceptionPointsPerVote: cfg.PicPerfect.DeceptionPointsPerVote,
		DiscoveryPoints:        cfg.PicPerfect.DiscoveryPoints,
		PoolSecret:             cfg.PicPerfect.PoolSecret,
	}
	service := picperfectservice.NewPicPerfectService(repos, eventBus, logger, metrics, tracer, db, rules)
	handlers := picperfecthandlers.NewPicPerfectHandlers(service, service, logger, tracer, metrics)

	var eventRouter *picperfectrouter.EventRouter
	if msgRouter != nil {
		eventRouter = picperfectrouter.NewEventRouter(logger, msgRouter, eventBus, obs.Registry)
		if err := eventRouter.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure pic perfect event router: %w", err)
		}
	}

	if httpRouter != nil {
		limiter := httpapi.NewRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		clientKey := httpapi.ClientKey(cfg.HTTP.TrustProxy)
		httpRouter.Route("/api"+picperfecthandlers.TeamRoutePattern, func(r chi.Router) {
			r.Use(httpapi.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(httpapi.RateLimitMiddleware(limiter, clientKey, logger))
			handlers.MountTeamRoutes(r)
		})
		httpRouter.Route("/api/admin/challenges", func(r chi.Router) {
			r.Use(httpapi.CORSMiddleware(cfg.HTTP.AllowedOrigins))
			r.Use(httpapi.RateLimitMiddleware(limiter, clientKey, logger))
			handlers.MountAdminRoutes(r)
		})
	}

	return &Module{
		config:        cfg,
		observability: obs,
		service:       service,
		handlers:      handlers,
		eventRouter:   eventRouter,
		logger:        logger,
	}, nil
}

// Run starts the Pic Perfect module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting Pic Perfect module",
		"default_challenge_id", m.config.PicPerfect.DefaultChallengeID,
	)

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Pic Perfect module goroutine stopped")
}

// Close stops the Pic Perfect module.
func (m *Module) Close() error {
	m.logger.Info("Stopping Pic Perfect module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Pic Perfect module stopped")
	return nil
}

// GetService returns the challenge service for use by other modules.
func (m *Module) GetService() *picperfectservice.PicPerfectService {
	return m.service
}
