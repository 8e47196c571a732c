// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/courtside/internal/domain/model"
)

// PlayerDependencies defines the interface for player operations.
type PlayerDependencies interface {
	RegisterPlayer(ctx context.Context, name string) (model.Player, bool, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
}

// PlayersHandler handles player registration and listing.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type registerPlayerRequest struct {
	Name string `json:"name"`
}

type playerResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Mu         float64    `json:"mu"`
	Sigma      float64    `json:"sigma"`
	MatchCount int        `json:"match_count"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
}

func toPlayerResponse(p model.Player) playerResponse {
	resp := playerResponse{
		ID:         string(p.ID),
		Name:       p.Name,
		Mu:         p.Belief.Mu,
		Sigma:      p.Belief.Sigma,
		MatchCount: p.MatchCount,
	}
	if !p.LastPlayed.IsZero() {
		t := p.LastPlayed
		resp.LastPlayed = &t
	}
	return resp
}

// HandleRegisterPlayer handles POST /players requests. Registering a name
// that already exists returns the existing record with 200 instead of 201.
func (h *PlayersHandler) HandleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req registerPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, created, err := h.deps.RegisterPlayer(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toPlayerResponse(p))
}

// HandleListPlayers handles GET /players requests.
func (h *PlayersHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.ListPlayers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]playerResponse, len(players))
	for i, p := range players {
		out[i] = toPlayerResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}
