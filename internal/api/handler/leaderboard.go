package handler

import (
	"net/http"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
)

// LeaderboardHandler serves the public leaderboard
type LeaderboardHandler struct {
	arcade *arcade.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(arcadeService *arcade.Service) *LeaderboardHandler {
	return &LeaderboardHandler{arcade: arcadeService}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.arcade.TopScores(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.List(w, entries)
}
