// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/courtside/internal/domain/model"
)

// ProbabilityDependencies defines the interface for match predictions.
type ProbabilityDependencies interface {
	WinProbability(ctx context.Context, a, b []model.PlayerID) (float64, error)
	MatchQuality(ctx context.Context, teams [][]model.PlayerID) (float64, error)
}

// ProbabilityHandler handles win probability requests.
type ProbabilityHandler struct {
	deps ProbabilityDependencies
}

// NewProbabilityHandler creates a new probability handler.
func NewProbabilityHandler(deps ProbabilityDependencies) *ProbabilityHandler {
	return &ProbabilityHandler{deps: deps}
}

type probabilityRequest struct {
	TeamA []string `json:"team_a"`
	TeamB []string `json:"team_b"`
}

type probabilityResponse struct {
	WinProbability float64 `json:"win_probability"`
	Quality        float64 `json:"quality"`
}

// HandleProbability handles POST /probability requests: the chance team A
// beats team B, plus how balanced the match-up is.
func (h *ProbabilityHandler) HandleProbability(w http.ResponseWriter, r *http.Request) {
	var req probabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	a, b := toPlayerIDs(req.TeamA), toPlayerIDs(req.TeamB)
	p, err := h.deps.WinProbability(r.Context(), a, b)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	q, err := h.deps.MatchQuality(r.Context(), [][]model.PlayerID{a, b})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, probabilityResponse{WinProbability: p, Quality: q})
}
