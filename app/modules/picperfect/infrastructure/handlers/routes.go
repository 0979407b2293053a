package picperfecthandlers

import "github.com/go-chi/chi/v5"

// TeamRoutePattern is where MountTeamRoutes expects to be mounted.
const TeamRoutePattern = "/challenges/{" + challengeParam + "}"

// MountTeamRoutes registers the team-facing routes of one challenge.
func (h *PicPerfectHandlers) MountTeamRoutes(r chi.Router) {
	r.Post("/submissions", h.HandleSubmitImage)
	r.Post("/votes", h.HandleCastVotes)
	r.Get("/voting-pool", h.HandleVotingPool)
	r.Get("/team-status", h.HandleTeamStatus)
	r.Get("/leaderboard", h.HandleLeaderboard)
	r.Get("/status", h.HandleChallengeStatus)
}

// MountAdminRoutes registers the admin routes under /challenges.
func (h *PicPerfectHandlers) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.HandleListChallenges)
	r.Route("/{"+challengeParam+"}", func(r chi.Router) {
		r.Post("/start", h.HandleStartChallenge)
		r.Post("/hidden-image", h.HandleSubmitHiddenImage)
		r.Post("/transition", h.HandleTransition)
		r.Post("/calculate-scores", h.HandleCalculateScores)
		r.Post("/finalize", h.HandleFinalize)
		r.Post("/lock", h.HandleLock)
		r.Post("/unlock", h.HandleUnlock)
		r.Post("/reset", h.HandleReset)

		r.Get("/submission-status", h.HandleSubmissionStatus)
		r.Get("/voting-status", h.HandleVotingStatus)
		r.Get("/leaderboard", h.HandleAdminLeaderboard)
		r.Get("/leaderboard.xlsx", h.HandleExportXLSX)
		r.Get("/leaderboard.png", h.HandleChartPNG)
	})
}
