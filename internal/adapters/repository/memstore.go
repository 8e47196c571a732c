package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/metrics"
)

// MemStore is an in-memory Store guarded by a read-write mutex. Reads take
// shared access; writers serialize. Suitable for tests and single-process
// deployments that do not need persistence.
type MemStore struct {
	mu      sync.RWMutex
	players map[model.PlayerID]model.Player
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithPlayers seeds the store with an initial set of players.
func WithPlayers(players ...model.Player) MemOption {
	return func(s *MemStore) {
		for _, p := range players {
			s.players[p.ID] = p
		}
	}
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		players: make(map[model.PlayerID]model.Player),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get implements Store.
func (s *MemStore) Get(ctx context.Context, id model.PlayerID) (model.Player, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

// Put implements Store.
func (s *MemStore) Put(ctx context.Context, p model.Player) error {
	defer observe("put", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[p.ID] = p
	metrics.UpdatePlayersTotal(len(s.players))
	return nil
}

// PutAll implements Store. The write lock makes the batch atomic with
// respect to readers.
func (s *MemStore) PutAll(ctx context.Context, players []model.Player) error {
	defer observe("put_all", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range players {
		s.players[p.ID] = p
	}
	metrics.UpdatePlayersTotal(len(s.players))
	return nil
}

// List implements Store.
func (s *MemStore) List(ctx context.Context) ([]model.Player, error) {
	defer observe("list", time.Now())

	s.mu.RLock()
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Archived {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count implements Store.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Close implements Store. Nothing to release.
func (s *MemStore) Close() error {
	return nil
}

// observe records the latency of one store operation.
func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
}
