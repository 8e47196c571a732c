// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/courtside/internal/domain/matchmake"
	"github.com/okian/courtside/internal/domain/model"
)

// SuggestDependencies defines the interface for matchmaking suggestions.
type SuggestDependencies interface {
	SuggestTeams(ctx context.Context, ids []model.PlayerID, format model.Format) (matchmake.Result, error)
	SuggestOpponents(ctx context.Context, team, pool []model.PlayerID, format model.Format) (matchmake.Result, error)
}

// SuggestHandler handles matchmaking requests.
type SuggestHandler struct {
	deps SuggestDependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps SuggestDependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

type suggestTeamsRequest struct {
	PlayerIDs []string `json:"player_ids"`
	TeamSize  int      `json:"team_size"`
	TeamCount int      `json:"team_count"`
}

type suggestOpponentsRequest struct {
	Team      []string `json:"team"`
	Pool      []string `json:"pool"`
	TeamSize  int      `json:"team_size"`
	TeamCount int      `json:"team_count"`
}

type assignmentResponse struct {
	Teams   [][]playerResponse `json:"teams"`
	Quality float64            `json:"quality"`
}

type suggestResponse struct {
	Assignments     []assignmentResponse `json:"assignments"`
	BudgetExhausted bool                 `json:"budget_exhausted"`
}

func toSuggestResponse(res matchmake.Result) suggestResponse {
	out := suggestResponse{
		Assignments:     make([]assignmentResponse, len(res.Assignments)),
		BudgetExhausted: res.BudgetExhausted,
	}
	for i, a := range res.Assignments {
		teams := make([][]playerResponse, len(a.Teams))
		for ti, team := range a.Teams {
			teams[ti] = make([]playerResponse, len(team))
			for pi, p := range team {
				teams[ti][pi] = toPlayerResponse(p)
			}
		}
		out.Assignments[i] = assignmentResponse{Teams: teams, Quality: a.Quality}
	}
	return out
}

// HandleSuggestTeams handles POST /suggest/teams requests. An empty
// player_ids list draws from the whole player base.
func (h *SuggestHandler) HandleSuggestTeams(w http.ResponseWriter, r *http.Request) {
	var req suggestTeamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	format := model.Format{TeamSize: req.TeamSize, TeamCount: req.TeamCount}
	res, err := h.deps.SuggestTeams(r.Context(), toPlayerIDs(req.PlayerIDs), format)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestResponse(res))
}

// HandleSuggestOpponents handles POST /suggest/opponents requests.
func (h *SuggestHandler) HandleSuggestOpponents(w http.ResponseWriter, r *http.Request) {
	var req suggestOpponentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	format := model.Format{TeamSize: req.TeamSize, TeamCount: req.TeamCount}
	res, err := h.deps.SuggestOpponents(r.Context(), toPlayerIDs(req.Team), toPlayerIDs(req.Pool), format)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestResponse(res))
}

func toPlayerIDs(ids []string) []model.PlayerID {
	out := make([]model.PlayerID, len(ids))
	for i, id := range ids {
		out[i] = model.PlayerID(id)
	}
	return out
}
