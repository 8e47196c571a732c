// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/courtside/internal/domain/engine"
	"github.com/okian/courtside/internal/domain/leaderboard"
	"github.com/okian/courtside/internal/domain/matchmake"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RegisterPlayer(ctx context.Context, name string) (model.Player, bool, error)
	ListPlayers(ctx context.Context) ([]model.Player, error)
	RecordMatch(ctx context.Context, m model.Match) ([]engine.Delta, bool, error)
	QueryLeaderboard(ctx context.Context, limit int) ([]leaderboard.Standing, error)
	SuggestTeams(ctx context.Context, ids []model.PlayerID, format model.Format) (matchmake.Result, error)
	SuggestOpponents(ctx context.Context, team, pool []model.PlayerID, format model.Format) (matchmake.Result, error)
	WinProbability(ctx context.Context, a, b []model.PlayerID) (float64, error)
	MatchQuality(ctx context.Context, teams [][]model.PlayerID) (float64, error)
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	playersHandler     *PlayersHandler
	matchesHandler     *MatchesHandler
	leaderboardHandler *LeaderboardHandler
	suggestHandler     *SuggestHandler
	probabilityHandler *ProbabilityHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLeaderboardLimit int) *Server {
	return &Server{
		playersHandler:     NewPlayersHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		suggestHandler:     NewSuggestHandler(deps),
		probabilityHandler: NewProbabilityHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/players", MetricsMiddleware(s.playersHandler.HandleRegisterPlayer, "players"))
	r.Get("/players", MetricsMiddleware(s.playersHandler.HandleListPlayers, "players"))
	r.Post("/matches", MetricsMiddleware(s.matchesHandler.HandleRecordMatch, "matches"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	r.Post("/suggest/teams", MetricsMiddleware(s.suggestHandler.HandleSuggestTeams, "suggest_teams"))
	r.Post("/suggest/opponents", MetricsMiddleware(s.suggestHandler.HandleSuggestOpponents, "suggest_opponents"))
	r.Post("/probability", MetricsMiddleware(s.probabilityHandler.HandleProbability, "probability"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinel kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", err)
	case errors.Is(err, model.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, "unknown_player", err)
	case errors.Is(err, model.ErrInsufficientPlayers):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_players", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
