package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect"
	"github.com/Black-And-White-Club/pic-perfect/app/modules/team"
	"github.com/Black-And-White-Club/pic-perfect/config"
	"github.com/Black-And-White-Club/pic-perfect/db/bundb"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Modules holds the application modules.
type Modules struct {
	PicPerfectModule *picperfect.Module
	TeamModule       *team.Module
}

// App holds the wired application.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Modules       *Modules
	Router        *message.Router
	EventBus      eventbus.EventBus
	DB            *bundb.DBService
	HTTPRouter    chi.Router
	httpServer    *http.Server
	wg            sync.WaitGroup
}

// Initialize wires the stores, the event bus, both modules and the HTTP
// router.
func (app *App) Initialize(ctx context.Context, cfg *config.Config, obs observability.Observability) error {
	app.Config = cfg
	app.Observability = obs
	logger := obs.Logger

	if app.DB == nil {
		dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, cfg.PicPerfect.MaxVotesPerTeam, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.DB = dbService
	}

	if app.EventBus == nil {
		app.EventBus = eventbus.NewInProcessBus(logger)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create Watermill router: %w", err)
	}
	app.Router = router

	app.HTTPRouter = NewHTTPRouter(obs)

	if err := app.initializeModules(ctx); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Application initialized")
	return nil
}

// NewHTTPRouter returns the chi router with the shared middleware and the
// health and metrics endpoints.
func NewHTTPRouter(obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(httpapi.CorrelationIDMiddleware)
	r.Use(httpapi.RequestLogger(obs.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if obs.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (app *App) initializeModules(ctx context.Context) error {
	picPerfectModule, err := picperfect.NewModule(
		ctx,
		app.Config,
		app.Observability,
		app.DB.GetDB(),
		app.DB.Repositories(),
		app.EventBus,
		app.Router,
		app.HTTPRouter,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize pic perfect module: %w", err)
	}

	teamModule := team.NewModule(ctx, app.Config, app.Observability, app.DB.GetDB(), app.DB.TeamDB, app.HTTPRouter)

	app.Modules = &Modules{
		PicPerfectModule: picPerfectModule,
		TeamModule:       teamModule,
	}
	return nil
}

// Run starts the modules, the Watermill router and the HTTP server, and
// blocks until ctx is canceled or the server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	app.wg.Add(2)
	go app.Modules.PicPerfectModule.Run(ctx, &app.wg)
	go app.Modules.TeamModule.Run(ctx, &app.wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()
	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("watermill router stopped: %w", err)
	case <-ctx.Done():
		return nil
	}

	app.httpServer = &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           otelhttp.NewHandler(app.HTTPRouter, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "addr", app.Config.HTTP.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}
}

// Close shuts the application down in reverse start order.
func (app *App) Close() {
	logger := app.Observability.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
		if err := app.httpServer.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down HTTP server", "error", err)
		}
		cancel()
	}

	if app.Modules != nil {
		if err := app.Modules.PicPerfectModule.Close(); err != nil {
			logger.Error("Error closing pic perfect module", "error", err)
		}
		if err := app.Modules.TeamModule.Close(); err != nil {
			logger.Error("Error closing team module", "error", err)
		}
	}
	app.wg.Wait()

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing Watermill router", "error", err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}
	logger.Info("Application shut down")
}
