package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if COURTSIDE_CONFIG is set
//  3. env (prefix COURTSIDE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COURTSIDE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: COURTSIDE_ADDR, COURTSIDE_SWAP_BUDGET, ...
	// Keys map to the koanf tags on the struct, underscores preserved.
	envProvider := env.Provider("COURTSIDE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "courtside_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.InitialSigma <= 0:
		return fmt.Errorf("%w: initial_sigma must be positive", ErrInvalidConfig)
	case c.Beta <= 0:
		return fmt.Errorf("%w: beta must be positive", ErrInvalidConfig)
	case c.DrawProbability < 0 || c.DrawProbability >= 1:
		return fmt.Errorf("%w: draw_probability must be in [0, 1)", ErrInvalidConfig)
	case c.SigmaFloor <= 0:
		return fmt.Errorf("%w: sigma_floor must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.SwapBudget <= 0:
		return fmt.Errorf("%w: swap_budget must be positive", ErrInvalidConfig)
	case c.SuggestTopK <= 0:
		return fmt.Errorf("%w: suggest_top_k must be positive", ErrInvalidConfig)
	}
	return nil
}
