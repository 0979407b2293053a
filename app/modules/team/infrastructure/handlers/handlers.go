package teamhandlers

import (
	"log/slog"
	"net/http"

	teamservice "github.com/Black-And-White-Club/pic-perfect/app/modules/team/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const teamParam = "teamName"

// RegisterTeamRequest is the body of POST /teams.
type RegisterTeamRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// UpdateMembersRequest is the body of PUT /teams/{team}/members.
type UpdateMembersRequest struct {
	Members []string `json:"members"`
}

// TeamHandlers serves the team registry routes.
type TeamHandlers struct {
	service teamservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTeamHandlers creates a new TeamHandlers instance.
func NewTeamHandlers(service teamservice.Service, logger *slog.Logger, tracer trace.Tracer) *TeamHandlers {
	return &TeamHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// MountRoutes registers the registry routes under /teams.
func (h *TeamHandlers) MountRoutes(r chi.Router) {
	r.Post("/", h.HandleRegisterTeam)
	r.Get("/", h.HandleListTeams)
	r.Route("/{"+teamParam+"}", func(r chi.Router) {
		r.Get("/", h.HandleGetTeam)
		r.Put("/members", h.HandleUpdateMembers)
		r.Post("/heartbeat", h.HandleHeartbeat)
		r.Delete("/", h.HandleDeleteTeam)
	})
}

// HandleRegisterTeam creates a team.
func (h *TeamHandlers) HandleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleRegisterTeam")
	defer span.End()

	var req RegisterTeamRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.service.RegisterTeam(ctx, req.Name, req.Members)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, team)
}

// HandleListTeams lists every registered team.
func (h *TeamHandlers) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleListTeams")
	defer span.End()

	teams, err := h.service.ListTeams(ctx)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, teams)
}

// HandleGetTeam returns one team.
func (h *TeamHandlers) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleGetTeam")
	defer span.End()

	team, err := h.service.GetTeam(ctx, chi.URLParam(r, teamParam))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, team)
}

// HandleUpdateMembers replaces a team's member list.
func (h *TeamHandlers) HandleUpdateMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleUpdateMembers")
	defer span.End()

	var req UpdateMembersRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.service.UpdateMembers(ctx, chi.URLParam(r, teamParam), req.Members)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, team)
}

// HandleHeartbeat records activity for a team.
func (h *TeamHandlers) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleHeartbeat")
	defer span.End()

	if err := h.service.TouchTeam(ctx, chi.URLParam(r, teamParam)); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteTeam removes a team from the registry.
func (h *TeamHandlers) HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TeamHandlers.HandleDeleteTeam")
	defer span.End()

	if err := h.service.DeleteTeam(ctx, chi.URLParam(r, teamParam)); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
