package handlers

import (
	"net/http"

	"github.com/HammerMeetNail/reelcanon/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboardService.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, "get leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
