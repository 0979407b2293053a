package picperfecthandlers

import (
	"log/slog"
	"net/http"
	"strings"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TeamHeader names the acting team on team routes.
	TeamHeader = "X-Team-Name"

	challengeParam = "challengeID"
)

// PicPerfectHandlers serves the team and admin HTTP routes and consumes
// challenge events.
type PicPerfectHandlers struct {
	service picperfectservice.Service
	admin   picperfectservice.AdminService
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics observability.ChallengeMetrics
}

// NewPicPerfectHandlers creates a new PicPerfectHandlers instance.
func NewPicPerfectHandlers(
	service picperfectservice.Service,
	admin picperfectservice.AdminService,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.ChallengeMetrics,
) *PicPerfectHandlers {
	return &PicPerfectHandlers{
		service: service,
		admin:   admin,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

func challengeID(r *http.Request) string {
	return chi.URLParam(r, challengeParam)
}

func teamName(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(TeamHeader))
}
