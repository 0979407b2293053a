package picperfecthandlers

import (
	"context"
	"fmt"
	"net/http"

	picperfectservice "github.com/Black-And-White-Club/pic-perfect/app/modules/picperfect/application"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
)

// SubmitImageRequest is the body of POST /challenges/{id}/submissions.
type SubmitImageRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// CastVotesRequest is the body of POST /challenges/{id}/votes. Each vote is
// either a pool entry id or a team name.
type CastVotesRequest struct {
	Votes []string `json:"votes"`
}

// AnonymousPoolEntry is a pool entry as shown to voters.
type AnonymousPoolEntry struct {
	EntryID  string `json:"entryId"`
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// requireTeam reads the acting team or answers 400.
func (h *PicPerfectHandlers) requireTeam(w http.ResponseWriter, r *http.Request) (string, bool) {
	team := teamName(r)
	if team == "" {
		httpapi.WriteError(w, r, h.logger, fmt.Errorf("%w: %s header is required", arcadeerrors.ErrValidation, TeamHeader))
		return "", false
	}
	return team, true
}

// HandleSubmitImage stores the acting team's image.
func (h *PicPerfectHandlers) HandleSubmitImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleSubmitImage")
	defer span.End()

	team, ok := h.requireTeam(w, r)
	if !ok {
		return
	}
	var req SubmitImageRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	res, err := h.service.SubmitTeamImage(ctx, challengeID(r), team, req.ImageURL, req.Prompt)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

// HandleCastVotes applies a vote batch. Pool entry ids are resolved to team
// names first so voters never need to know who made an image.
func (h *PicPerfectHandlers) HandleCastVotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleCastVotes")
	defer span.End()

	team, ok := h.requireTeam(w, r)
	if !ok {
		return
	}
	var req CastVotesRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	id := challengeID(r)
	targets, err := h.resolveVotes(ctx, id, team, req.Votes)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	res, err := h.service.CastVotes(ctx, id, team, targets)
	if err != nil {
		h.logger.WarnContext(ctx, "Vote batch rejected",
			attr.ExtractCorrelationID(ctx),
			attr.ChallengeID(id),
			attr.TeamName(team),
			attr.String("code", arcadeerrors.Code(err)),
		)
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// resolveVotes swaps pool entry ids for team names in place. Plain team
// names pass through unchanged.
func (h *PicPerfectHandlers) resolveVotes(ctx context.Context, challengeID, team string, votes []string) ([]string, error) {
	var ids []string
	for _, v := range votes {
		if picperfectservice.IsPoolEntryID(v) {
			ids = append(ids, v)
		}
	}
	if len(ids) == 0 {
		return votes, nil
	}

	names, err := h.service.ResolvePoolEntries(ctx, challengeID, team, ids)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(votes))
	next := 0
	for i, v := range votes {
		if picperfectservice.IsPoolEntryID(v) {
			out[i] = names[next]
			next++
			continue
		}
		out[i] = v
	}
	return out, nil
}

// HandleVotingPool lists the images the acting team may vote for, without
// team names.
func (h *PicPerfectHandlers) HandleVotingPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleVotingPool")
	defer span.End()

	team, ok := h.requireTeam(w, r)
	if !ok {
		return
	}
	pool, err := h.service.GetVotingPool(ctx, challengeID(r), team)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, anonymize(pool))
}

func anonymize(pool []picperfectservice.PoolEntry) []AnonymousPoolEntry {
	out := make([]AnonymousPoolEntry, 0, len(pool))
	for _, p := range pool {
		out = append(out, AnonymousPoolEntry{EntryID: p.EntryID, ImageURL: p.ImageURL, Prompt: p.Prompt})
	}
	return out
}

// HandleTeamStatus returns the acting team's status.
func (h *PicPerfectHandlers) HandleTeamStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleTeamStatus")
	defer span.End()

	team, ok := h.requireTeam(w, r)
	if !ok {
		return
	}
	status, err := h.service.GetTeamStatus(ctx, challengeID(r), team)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, status)
}

// HandleLeaderboard returns the ranked leaderboard.
func (h *PicPerfectHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleLeaderboard")
	defer span.End()

	board, err := h.service.GetLeaderboard(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, board)
}

// HandleChallengeStatus returns the challenge summary.
func (h *PicPerfectHandlers) HandleChallengeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleChallengeStatus")
	defer span.End()

	status, err := h.service.GetChallengeStatus(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, status)
}
