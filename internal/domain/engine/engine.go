// Package engine applies match outcomes to the rating store. It is the
// single writer for player beliefs: outcomes are validated, run through
// the skill model, and persisted as one atomic batch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/skill"
	"github.com/okian/courtside/pkg/metrics"
)

// Delta describes how one player's belief moved after a match.
type Delta struct {
	Player model.PlayerID `json:"player"`
	Before model.Belief   `json:"before"`
	After  model.Belief   `json:"after"`
}

// Engine records matches against the store using a skill model.
type Engine struct {
	store repository.Store
	model *skill.Model

	// mu serializes rating updates so two concurrent matches cannot
	// both read stale beliefs and overwrite each other's posteriors.
	mu sync.Mutex
}

// New creates an engine writing through the given store and model.
func New(store repository.Store, m *skill.Model) *Engine {
	return &Engine{store: store, model: m}
}

// RecordMatch validates the outcome, updates every participant's belief,
// and persists the batch atomically. Players unknown to the store enter
// at the prior belief before the update is applied, so a newcomer's
// first match moves them off the prior like anyone else.
func (e *Engine) RecordMatch(ctx context.Context, m model.Match) ([]Delta, error) {
	start := time.Now()

	if err := validateShape(m); err != nil {
		metrics.RecordMatchRejected()
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	players, err := e.loadParticipants(ctx, m)
	if err != nil {
		return nil, err
	}

	beliefs := make([][]model.Belief, len(m.Teams))
	for i, team := range m.Teams {
		beliefs[i] = make([]model.Belief, len(team))
		for j, id := range team {
			beliefs[i][j] = players[id].Belief
		}
	}

	updated, err := e.model.Update(beliefs, m.Ranks)
	if err != nil {
		metrics.RecordMatchRejected()
		return nil, err
	}

	playedAt := m.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}

	deltas := make([]Delta, 0, len(players))
	batch := make([]model.Player, 0, len(players))
	for i, team := range m.Teams {
		for j, id := range team {
			p := players[id]
			deltas = append(deltas, Delta{Player: id, Before: p.Belief, After: updated[i][j]})

			p.Belief = updated[i][j]
			p.MatchCount++
			p.LastPlayed = playedAt
			batch = append(batch, p)
		}
	}

	if err := e.store.PutAll(ctx, batch); err != nil {
		return nil, fmt.Errorf("persist ratings for match %s: %w", m.ID, err)
	}

	metrics.RecordMatchApplied()
	metrics.RecordRatingUpdateLatency(float64(time.Since(start).Milliseconds()))
	return deltas, nil
}

// loadParticipants fetches every player in the match, creating store
// records at the prior for ids never seen before.
func (e *Engine) loadParticipants(ctx context.Context, m model.Match) (map[model.PlayerID]model.Player, error) {
	players := make(map[model.PlayerID]model.Player)
	for _, team := range m.Teams {
		for _, id := range team {
			p, err := e.store.Get(ctx, id)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				p = model.Player{
					ID:     id,
					Name:   string(id),
					Belief: e.model.DefaultBelief(),
				}
			case err != nil:
				return nil, fmt.Errorf("load player %s: %w", id, err)
			}
			players[id] = p
		}
	}
	return players, nil
}

func validateShape(m model.Match) error {
	if len(m.Teams) < 2 {
		return fmt.Errorf("%w: match needs at least two teams", model.ErrInvalidFormat)
	}
	if len(m.Ranks) != len(m.Teams) {
		return fmt.Errorf("%w: got %d ranks for %d teams", model.ErrInvalidFormat, len(m.Ranks), len(m.Teams))
	}

	seen := make(map[model.PlayerID]struct{})
	for _, team := range m.Teams {
		if len(team) == 0 {
			return fmt.Errorf("%w: empty team", model.ErrInvalidFormat)
		}
		for _, id := range team {
			if id == "" {
				return fmt.Errorf("%w: empty player id", model.ErrInvalidFormat)
			}
			if _, ok := seen[id]; ok {
				return fmt.Errorf("%w: player %s appears twice", model.ErrInvalidFormat, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}
