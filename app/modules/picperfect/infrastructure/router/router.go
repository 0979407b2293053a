package picperfectrouter

import (
	"context"
	"log/slog"
	"os"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// EventHandlers consumes challenge events.
type EventHandlers interface {
	HandleChallengeEvent(msg *message.Message) error
}

// EventRouter subscribes the audit handler to every challenge topic.
type EventRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewEventRouter creates a new instance of the router. Router metrics are
// skipped when no registry is given or APP_ENV=test.
func NewEventRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *EventRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &EventRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the event handlers.
func (r *EventRouter) Configure(ctx context.Context, handlers EventHandlers) error {
	if r.metricsEnabled {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for Pic Perfect")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(ctx, handlers)
}

// RegisterHandlers binds every published topic to the audit handler.
func (r *EventRouter) RegisterHandlers(ctx context.Context, handlers EventHandlers) error {
	r.logger.InfoContext(ctx, "Registering Pic Perfect Event Handlers")

	for _, topic := range picperfectservice.AllTopics {
		r.Router.AddNoPublisherHandler(
			"picperfect.audit."+topic,
			topic,
			r.subscriber,
			handlers.HandleChallengeEvent,
		)
	}
	return nil
}

// Close stops the router and cleans up resources.
func (r *EventRouter) Close() error {
	return r.Router.Close()
}
