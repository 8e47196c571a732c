// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/dedupe"
	"github.com/okian/courtside/internal/domain/engine"
	"github.com/okian/courtside/internal/domain/leaderboard"
	"github.com/okian/courtside/internal/domain/matchmake"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/quality"
	"github.com/okian/courtside/internal/domain/skill"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// Service wires the rating domain together for the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	skillModel *skill.Model
	eval       *quality.Evaluator
	matchmaker *matchmake.Matchmaker
	board      *leaderboard.Leaderboard
	deduper    dedupe.Deduper
	engine     *engine.Engine

	// Configuration
	leaderboardK    float64
	dedupeSize      int
	workerCount     int
	exhaustiveLimit int
	swapBudget      int
	topK            int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the rating store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSkillModel injects a configured skill model.
func WithSkillModel(m *skill.Model) Option {
	return func(s *Service) {
		if m != nil {
			s.skillModel = m
		}
	}
}

// WithLeaderboardK sets the conservative-score multiplier.
func WithLeaderboardK(k float64) Option {
	return func(s *Service) {
		if k >= 0 {
			s.leaderboardK = k
		}
	}
}

// WithDedupeSize sets the size of the match idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithWorkerCount sets the number of matchmaker scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithExhaustiveLimit sets the largest pool searched exhaustively.
func WithExhaustiveLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.exhaustiveLimit = limit
		}
	}
}

// WithSwapBudget caps candidate evaluations per matchmaking request.
func WithSwapBudget(budget int) Option {
	return func(s *Service) {
		if budget > 0 {
			s.swapBudget = budget
		}
	}
}

// WithTopK sets how many assignments a suggestion returns.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		leaderboardK:    leaderboard.DefaultConservativeK,
		dedupeSize:      500_000,
		workerCount:     runtime.NumCPU(),
		exhaustiveLimit: 10,
		swapBudget:      5000,
		topK:            3,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory rating store")
	}
	if s.skillModel == nil {
		s.skillModel = skill.New()
	}

	s.eval = quality.New(quality.WithBeta(s.skillModel.Beta()))
	s.matchmaker = matchmake.New(s.eval,
		matchmake.WithExhaustiveLimit(s.exhaustiveLimit),
		matchmake.WithSwapBudget(s.swapBudget),
		matchmake.WithWorkerCount(s.workerCount),
		matchmake.WithTopK(s.topK),
	)
	s.board = leaderboard.New(leaderboard.WithConservativeK(s.leaderboardK))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.engine = engine.New(s.store, s.skillModel)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.workerCount),
		logger.Int("swapBudget", s.swapBudget),
		logger.Float64("leaderboardK", s.leaderboardK),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "closing rating store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// RegisterPlayer adds a player under the given display name. Names are
// matched case-insensitively; registering an existing name returns the
// current record with created=false instead of failing, so clients can
// register idempotently.
func (s *Service) RegisterPlayer(ctx context.Context, name string) (model.Player, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Player{}, false, fmt.Errorf("%w: player name must not be empty", model.ErrInvalidFormat)
	}

	players, err := s.store.List(ctx)
	if err != nil {
		return model.Player{}, false, err
	}
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			return p, false, nil
		}
	}

	p := model.Player{
		ID:     model.PlayerID(uuid.NewString()),
		Name:   name,
		Belief: s.skillModel.DefaultBelief(),
	}
	if err := s.store.Put(ctx, p); err != nil {
		return model.Player{}, false, err
	}

	s.logger.Info(ctx, "player registered",
		logger.String("id", string(p.ID)),
		logger.String("name", p.Name),
	)
	return p, true, nil
}

// ListPlayers returns all non-archived players ordered by id.
func (s *Service) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return s.store.List(ctx)
}

// RecordMatch applies a match outcome once. A replayed match ID returns
// duplicate=true with no deltas and no rating movement. A failed update
// unrecords the ID so the caller can retry.
func (s *Service) RecordMatch(ctx context.Context, m model.Match) ([]engine.Delta, bool, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMatchDuplicate()
		s.logger.Debug(ctx, "duplicate match ignored", logger.String("matchID", m.ID))
		return nil, true, nil
	}

	deltas, err := s.engine.RecordMatch(ctx, m)
	if err != nil {
		s.deduper.Unrecord(ctx, m.ID)
		return nil, false, err
	}

	s.logger.Info(ctx, "match recorded",
		logger.String("matchID", m.ID),
		logger.Int("players", len(deltas)),
	)
	return deltas, false, nil
}

// QueryLeaderboard ranks all players by conservative score. limit > 0
// truncates the standings.
func (s *Service) QueryLeaderboard(ctx context.Context, limit int) ([]leaderboard.Standing, error) {
	players, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	standings := s.board.Rank(players)
	if limit > 0 && limit < len(standings) {
		standings = standings[:limit]
	}
	return standings, nil
}

// SuggestTeams proposes balanced team assignments drawn from the given
// player ids. An empty id list means the whole player base is the pool.
func (s *Service) SuggestTeams(ctx context.Context, ids []model.PlayerID, format model.Format) (matchmake.Result, error) {
	pool, err := s.poolFor(ctx, ids)
	if err != nil {
		return matchmake.Result{}, err
	}
	return s.matchmaker.SuggestTeams(ctx, pool, format)
}

// SuggestOpponents ranks opposing line-ups for a fixed team. An empty pool
// means every other registered player is a candidate.
func (s *Service) SuggestOpponents(ctx context.Context, team []model.PlayerID, pool []model.PlayerID, format model.Format) (matchmake.Result, error) {
	fixed, err := s.resolve(ctx, team)
	if err != nil {
		return matchmake.Result{}, err
	}
	candidates, err := s.poolFor(ctx, pool)
	if err != nil {
		return matchmake.Result{}, err
	}
	return s.matchmaker.SuggestOpponents(ctx, fixed, candidates, format)
}

// WinProbability is the chance team A beats team B under current beliefs.
func (s *Service) WinProbability(ctx context.Context, a, b []model.PlayerID) (float64, error) {
	teamA, err := s.resolve(ctx, a)
	if err != nil {
		return 0, err
	}
	teamB, err := s.resolve(ctx, b)
	if err != nil {
		return 0, err
	}
	return s.eval.WinProbability(beliefs(teamA), beliefs(teamB))
}

// MatchQuality scores how balanced the given team line-ups are.
func (s *Service) MatchQuality(ctx context.Context, teams [][]model.PlayerID) (float64, error) {
	resolved := make([][]model.Belief, len(teams))
	for i, ids := range teams {
		players, err := s.resolve(ctx, ids)
		if err != nil {
			return 0, err
		}
		resolved[i] = beliefs(players)
	}
	return s.eval.Quality(resolved)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"swapBudget":  s.swapBudget,
		"topK":        s.topK,
	}

	if s.started {
		total := s.store.Count(context.Background())
		stats["totalPlayers"] = total
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdatePlayersTotal(total)
	}

	return stats
}

// poolFor resolves ids, or lists the whole player base when ids is empty.
func (s *Service) poolFor(ctx context.Context, ids []model.PlayerID) ([]model.Player, error) {
	if len(ids) == 0 {
		return s.store.List(ctx)
	}
	return s.resolve(ctx, ids)
}

// resolve loads the given players, mapping missing ids to ErrUnknownPlayer.
// Read paths never auto-create; only recorded matches do that.
func (s *Service) resolve(ctx context.Context, ids []model.PlayerID) ([]model.Player, error) {
	players := make([]model.Player, len(ids))
	for i, id := range ids {
		p, err := s.store.Get(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownPlayer, id)
		case err != nil:
			return nil, err
		}
		players[i] = p
	}
	return players, nil
}

func beliefs(players []model.Player) []model.Belief {
	out := make([]model.Belief, len(players))
	for i, p := range players {
		out[i] = p.Belief
	}
	return out
}
