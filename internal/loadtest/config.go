// Package loadtest drives a running courtside instance end to end:
// it registers a roster, submits randomized matches, and checks that the
// leaderboard reflects the engineered skill ordering.
package loadtest

import (
	"flag"
	"time"
)

// Default test parameters.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultNumPlayers = 20
	DefaultNumMatches = 200
	DefaultWorkers    = 4
	DefaultTimeout    = 30 * time.Second
	DefaultTopN       = 10
)

// Config holds the load test parameters.
type Config struct {
	BaseURL    string
	NumPlayers int
	NumMatches int
	Workers    int
	Timeout    time.Duration
	TopN       int
	TeamSize   int
	Seed       int64
}

// ParseFlags builds a Config from command-line flags.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.BaseURL, "url", DefaultBaseURL, "base URL of the courtside service")
	flag.IntVar(&cfg.NumPlayers, "players", DefaultNumPlayers, "number of players to register")
	flag.IntVar(&cfg.NumMatches, "matches", DefaultNumMatches, "number of matches to submit")
	flag.IntVar(&cfg.Workers, "workers", DefaultWorkers, "concurrent submitters")
	flag.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "per-request timeout")
	flag.IntVar(&cfg.TopN, "top", DefaultTopN, "leaderboard entries to fetch at the end")
	flag.IntVar(&cfg.TeamSize, "team-size", 1, "players per team in generated matches")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed for match generation")
	flag.Parse()

	return cfg
}
