// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/okian/courtside/internal/domain/skill"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StorePath points at the on-disk rating store. Empty means the
	// service runs on the in-memory store.
	StorePath string `koanf:"store_path"`

	// InitialMu and InitialSigma define the prior belief for new players.
	InitialMu    float64 `koanf:"initial_mu"`
	InitialSigma float64 `koanf:"initial_sigma"`

	// Beta is the per-player performance variance scale.
	Beta float64 `koanf:"beta"`

	// DrawProbability is the prior chance two even teams tie.
	DrawProbability float64 `koanf:"draw_probability"`

	// SigmaFloor bounds how certain a rating may become.
	SigmaFloor float64 `koanf:"sigma_floor"`

	// LeaderboardK scales the uncertainty penalty in conservative scores.
	LeaderboardK float64 `koanf:"leaderboard_k"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ExhaustivePoolLimit is the largest pool the matchmaker fully
	// enumerates before switching to local search.
	ExhaustivePoolLimit int `koanf:"exhaustive_pool_limit"`

	// SwapBudget caps candidate evaluations per matchmaking request.
	SwapBudget int `koanf:"swap_budget"`

	// SuggestTopK sets how many team assignments a suggestion returns.
	SuggestTopK int `koanf:"suggest_top_k"`

	// WorkerCount sets the number of matchmaker scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the match idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		StorePath:           "",
		InitialMu:           skill.DefaultMu,
		InitialSigma:        skill.DefaultSigma,
		Beta:                skill.DefaultBeta,
		DrawProbability:     skill.DefaultDrawProbability,
		SigmaFloor:          skill.DefaultSigmaFloor,
		LeaderboardK:        3.0,
		MaxLeaderboardLimit: 100,
		ExhaustivePoolLimit: 10,
		SwapBudget:          5000,
		SuggestTopK:         3,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          500_000,
	}
}
