// Package repository defines the rating store interface and its
// implementations. The store is the sole mutation boundary for player
// beliefs; everything else in the core derives from it.
package repository

import (
	"context"

	"github.com/okian/courtside/internal/domain/model"
)

// Store provides read/write access to player ratings.
type Store interface {
	// Get returns the player with the given id.
	// Returns ErrNotFound if the player is unknown.
	Get(ctx context.Context, id model.PlayerID) (model.Player, error)

	// Put creates or replaces a single player.
	Put(ctx context.Context, p model.Player) error

	// PutAll writes a set of players in one atomic step. The match engine
	// uses this so a recorded match either lands fully or not at all.
	PutAll(ctx context.Context, players []model.Player) error

	// List returns all non-archived players, ordered by id.
	List(ctx context.Context) ([]model.Player, error)

	// Count returns the number of players tracked, archived included.
	Count(ctx context.Context) int

	// Close releases any resources held by the store.
	Close() error
}
