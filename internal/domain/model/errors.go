package model

import "errors"

// Sentinel kinds shared across the core. Callers match with errors.Is;
// packages wrap these with context via fmt.Errorf("%w: ...").
var (
	// ErrInvalidFormat marks a malformed match or team shape. Rejected
	// before any mutation.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnknownPlayer marks a reference to a player with no history where
	// auto-creation does not apply (read-only paths).
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrInsufficientPlayers marks a pool too small for the requested
	// format.
	ErrInsufficientPlayers = errors.New("insufficient players")
)
