// Package matchmake searches the combinatorial space of team assignments
// for the most balanced match-ups.
//
// Small pools are searched exhaustively with a bounded worker fan-out over
// candidate partitions. Larger pools fall back to a snake-draft seed plus a
// budget-bounded pairwise-swap hill climb. Both paths honor context
// cancellation and report best-found-so-far with a flag instead of failing
// when the budget runs out.
package matchmake

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/quality"
	"github.com/okian/courtside/pkg/metrics"
)

// Default search configuration constants.
const (
	defaultExhaustiveLimit = 10
	defaultSwapBudget      = 5000
	defaultTopK            = 3

	// qualityEps separates a genuine quality improvement from float noise.
	qualityEps = 1e-12
)

// Matchmaker proposes balanced team assignments from a player pool.
type Matchmaker struct {
	eval            *quality.Evaluator
	exhaustiveLimit int
	swapBudget      int
	workers         int
	topK            int
}

// Result is the outcome of a search. Assignments are ordered best first.
// BudgetExhausted means the search stopped early and the list may miss
// better candidates; the entries themselves are still valid.
type Result struct {
	Assignments     []model.TeamAssignment
	BudgetExhausted bool
}

// New creates a Matchmaker around the given evaluator.
func New(eval *quality.Evaluator, opts ...Option) *Matchmaker {
	m := &Matchmaker{
		eval:            eval,
		exhaustiveLimit: defaultExhaustiveLimit,
		swapBudget:      defaultSwapBudget,
		workers:         runtime.NumCPU(),
		topK:            defaultTopK,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SuggestTeams partitions pool into format.TeamCount teams of
// format.TeamSize, maximizing match quality. Players beyond the required
// count may sit out. Ties in quality go to the assignment with the lowest
// combined variance, then lexicographic player ids.
func (m *Matchmaker) SuggestTeams(ctx context.Context, pool []model.Player, format model.Format) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordMatchmakerSearchDuration(float64(time.Since(start).Milliseconds()))
	}()

	if err := validateFormat(format); err != nil {
		return Result{}, err
	}
	pool, err := normalizePool(pool)
	if err != nil {
		return Result{}, err
	}
	if len(pool) < format.PlayersNeeded() {
		return Result{}, fmt.Errorf("%w: need %d players for %dv-style format, have %d",
			model.ErrInsufficientPlayers, format.PlayersNeeded(), format.TeamSize, len(pool))
	}

	if len(pool) <= m.exhaustiveLimit {
		return m.exhaustive(ctx, nil, pool, format.TeamCount, format.TeamSize)
	}
	return m.localSearch(ctx, pool, format)
}

// SuggestOpponents holds the given team fixed and ranks candidate opposing
// line-ups from pool by descending quality. Members of the fixed team are
// excluded from the candidate pool automatically.
func (m *Matchmaker) SuggestOpponents(ctx context.Context, team []model.Player, pool []model.Player, format model.Format) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordMatchmakerSearchDuration(float64(time.Since(start).Milliseconds()))
	}()

	if err := validateFormat(format); err != nil {
		return Result{}, err
	}
	if len(team) != format.TeamSize {
		return Result{}, fmt.Errorf("%w: fixed team has %d players, format wants %d",
			model.ErrInvalidFormat, len(team), format.TeamSize)
	}

	fixed := make(map[model.PlayerID]bool, len(team))
	for _, p := range team {
		fixed[p.ID] = true
	}
	rest := make([]model.Player, 0, len(pool))
	for _, p := range pool {
		if !fixed[p.ID] {
			rest = append(rest, p)
		}
	}
	rest, err := normalizePool(rest)
	if err != nil {
		return Result{}, err
	}

	needed := format.PlayersNeeded() - format.TeamSize
	if len(rest) < needed {
		return Result{}, fmt.Errorf("%w: need %d opponents, have %d",
			model.ErrInsufficientPlayers, needed, len(rest))
	}

	return m.exhaustive(ctx, team, rest, format.TeamCount-1, format.TeamSize)
}

func validateFormat(format model.Format) error {
	if format.TeamSize < 1 || format.TeamCount < 2 {
		return fmt.Errorf("%w: format %dx%d", model.ErrInvalidFormat, format.TeamCount, format.TeamSize)
	}
	return nil
}

// normalizePool sorts the pool by id for deterministic enumeration and
// rejects duplicate entries.
func normalizePool(pool []model.Player) ([]model.Player, error) {
	out := make([]model.Player, len(pool))
	copy(out, pool)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	for i := 1; i < len(out); i++ {
		if out[i].ID == out[i-1].ID {
			return nil, fmt.Errorf("%w: duplicate player %s in pool", model.ErrInvalidFormat, out[i].ID)
		}
	}
	return out, nil
}
