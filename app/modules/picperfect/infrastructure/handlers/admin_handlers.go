package picperfecthandlers

import (
	"net/http"

	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/httpapi"
)

// StartChallengeRequest is the body of POST /admin/challenges/{id}/start.
type StartChallengeRequest struct {
	HiddenImageURL string         `json:"hiddenImageUrl"`
	Prompt         string         `json:"prompt"`
	Config         statedb.Config `json:"config,omitempty"`
}

// HiddenImageRequest is the body of POST /admin/challenges/{id}/hidden-image.
type HiddenImageRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// TransitionRequest names the target state for transition and unlock.
type TransitionRequest struct {
	TargetState string `json:"targetState"`
}

// ResetRequest is the body of POST /admin/challenges/{id}/reset.
type ResetRequest struct {
	PreserveTeams bool `json:"preserveTeams"`
}

// HandleListChallenges lists every challenge.
func (h *PicPerfectHandlers) HandleListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleListChallenges")
	defer span.End()

	list, err := h.admin.ListChallenges(ctx)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

// HandleStartChallenge starts or reopens a challenge.
func (h *PicPerfectHandlers) HandleStartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleStartChallenge")
	defer span.End()

	var req StartChallengeRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	res, err := h.admin.StartChallenge(ctx, challengeID(r), req.HiddenImageURL, req.Prompt, req.Config)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	status := http.StatusCreated
	if res.Reopened {
		status = http.StatusOK
	}
	httpapi.WriteJSON(w, status, res)
}

// HandleSubmitHiddenImage stores the hidden original.
func (h *PicPerfectHandlers) HandleSubmitHiddenImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleSubmitHiddenImage")
	defer span.End()

	var req HiddenImageRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	res, err := h.admin.SubmitHiddenImage(ctx, challengeID(r), req.ImageURL, req.Prompt)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, res)
}

// HandleTransition moves the challenge along one edge of the state table.
func (h *PicPerfectHandlers) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleTransition")
	defer span.End()

	target, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}
	res, err := h.admin.TransitionChallengeState(ctx, challengeID(r), target)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

func (h *PicPerfectHandlers) decodeTarget(w http.ResponseWriter, r *http.Request) (statedb.ChallengeState, bool) {
	var req TransitionRequest
	if err := httpapi.DecodeJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return "", false
	}
	target, err := statedb.ParseChallengeState(req.TargetState)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return "", false
	}
	return target, true
}

// HandleCalculateScores recomputes every team's score.
func (h *PicPerfectHandlers) HandleCalculateScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleCalculateScores")
	defer span.End()

	res, err := h.admin.CalculateScores(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleFinalize completes the challenge.
func (h *PicPerfectHandlers) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleFinalize")
	defer span.End()

	res, err := h.admin.FinalizeChallenge(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleLock forces the challenge into LOCKED.
func (h *PicPerfectHandlers) HandleLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleLock")
	defer span.End()

	res, err := h.admin.LockChallenge(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleUnlock moves a locked challenge into the requested state.
func (h *PicPerfectHandlers) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleUnlock")
	defer span.End()

	target, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}
	res, err := h.admin.UnlockChallenge(ctx, challengeID(r), target)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleReset clears the challenge and locks it.
func (h *PicPerfectHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleReset")
	defer span.End()

	var req ResetRequest
	if r.ContentLength != 0 {
		if err := httpapi.DecodeJSON(w, r, &req); err != nil {
			httpapi.WriteError(w, r, h.logger, err)
			return
		}
	}
	res, err := h.admin.ResetChallenge(ctx, challengeID(r), req.PreserveTeams)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleSubmissionStatus reports which teams still have to submit.
func (h *PicPerfectHandlers) HandleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleSubmissionStatus")
	defer span.End()

	res, err := h.admin.GetSubmissionStatus(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleVotingStatus reports which teams still hold votes.
func (h *PicPerfectHandlers) HandleVotingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleVotingStatus")
	defer span.End()

	res, err := h.admin.GetVotingStatus(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleAdminLeaderboard returns the leaderboard without the team guard.
func (h *PicPerfectHandlers) HandleAdminLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleAdminLeaderboard")
	defer span.End()

	res, err := h.admin.GetLeaderboard(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}

// HandleExportXLSX downloads the leaderboard as a workbook.
func (h *PicPerfectHandlers) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleExportXLSX")
	defer span.End()

	id := challengeID(r)
	data, err := h.admin.ExportLeaderboardXLSX(ctx, id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", id+"-leaderboard.xlsx", data)
}

// HandleChartPNG renders the leaderboard as a bar chart.
func (h *PicPerfectHandlers) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PicPerfectHandlers.HandleChartPNG")
	defer span.End()

	data, err := h.admin.RenderLeaderboardChart(ctx, challengeID(r))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteFile(w, "image/png", "", data)
}
