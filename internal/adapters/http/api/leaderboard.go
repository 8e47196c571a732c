// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/courtside/internal/domain/leaderboard"
)

// LeaderboardDependencies defines the interface for leaderboard queries.
type LeaderboardDependencies interface {
	QueryLeaderboard(ctx context.Context, limit int) ([]leaderboard.Standing, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type standingResponse struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Mu         float64 `json:"mu"`
	Sigma      float64 `json:"sigma"`
	MatchCount int     `json:"match_count"`
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests. limit is
// optional and defaults to the configured maximum.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}

	standings, err := h.deps.QueryLeaderboard(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]standingResponse, len(standings))
	for i, s := range standings {
		out[i] = standingResponse{
			Rank:       s.Rank,
			ID:         string(s.Player.ID),
			Name:       s.Player.Name,
			Score:      s.Score,
			Mu:         s.Player.Belief.Mu,
			Sigma:      s.Player.Belief.Sigma,
			MatchCount: s.Player.MatchCount,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
