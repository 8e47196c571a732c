// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/courtside/internal/domain/engine"
	"github.com/okian/courtside/internal/domain/model"
)

// MatchDependencies defines the interface for recording matches.
type MatchDependencies interface {
	RecordMatch(ctx context.Context, m model.Match) ([]engine.Delta, bool, error)
}

// MatchesHandler handles match submissions.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type matchRequest struct {
	ID       string     `json:"id"`
	Teams    [][]string `json:"teams"`
	Ranks    []int      `json:"ranks"`
	PlayedAt string     `json:"played_at,omitempty"`
}

type deltaResponse struct {
	Player string  `json:"player"`
	MuFrom float64 `json:"mu_from"`
	MuTo   float64 `json:"mu_to"`
	Sigma  float64 `json:"sigma"`
}

type matchResponse struct {
	Status    string          `json:"status"`
	Duplicate bool            `json:"duplicate"`
	MatchID   string          `json:"match_id,omitempty"`
	Deltas    []deltaResponse `json:"deltas,omitempty"`
}

// HandleRecordMatch handles POST /matches requests. Replays of an already
// recorded match ID acknowledge with duplicate=true and no rating movement.
func (h *MatchesHandler) HandleRecordMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	m := model.Match{
		ID:    req.ID,
		Teams: toPlayerIDTeams(req.Teams),
		Ranks: req.Ranks,
	}
	if req.PlayedAt != "" {
		t, err := time.Parse(time.RFC3339, req.PlayedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		m.PlayedAt = t
	}

	deltas, duplicate, err := h.deps.RecordMatch(r.Context(), m)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, matchResponse{Status: "duplicate", Duplicate: true, MatchID: m.ID})
		return
	}

	out := make([]deltaResponse, len(deltas))
	for i, d := range deltas {
		out[i] = deltaResponse{
			Player: string(d.Player),
			MuFrom: d.Before.Mu,
			MuTo:   d.After.Mu,
			Sigma:  d.After.Sigma,
		}
	}
	writeJSON(w, http.StatusOK, matchResponse{Status: "recorded", MatchID: m.ID, Deltas: out})
}

func toPlayerIDTeams(teams [][]string) [][]model.PlayerID {
	out := make([][]model.PlayerID, len(teams))
	for i, team := range teams {
		out[i] = make([]model.PlayerID, len(team))
		for j, id := range team {
			out[i][j] = model.PlayerID(id)
		}
	}
	return out
}
