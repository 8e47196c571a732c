package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/courtside/pkg/logger"
)

// Stats accumulates what happened during the run.
type Stats struct {
	mu sync.Mutex

	StartTime  time.Time
	Registered int
	Submitted  int
	Duplicates int
	Errors     int
}

func (s *Stats) record(duplicate bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err != nil:
		s.Errors++
	case duplicate:
		s.Duplicates++
	default:
		s.Submitted++
	}
}

// Run executes the complete load test.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get()
	stats := &Stats{StartTime: time.Now()}
	client := newClient(cfg.BaseURL, cfg.Timeout)
	rng := rand.New(rand.NewSource(cfg.Seed))

	log.Info(ctx, "starting courtside load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.NumPlayers),
		logger.Int("matches", cfg.NumMatches),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.checkHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	ids, err := registerRoster(ctx, client, cfg, stats)
	if err != nil {
		return fmt.Errorf("player registration failed: %w", err)
	}

	r := buildRoster(ids, rng)
	matches := r.generateMatches(cfg.NumMatches, cfg.TeamSize, rng)

	if err := submitMatches(ctx, client, cfg, matches, stats); err != nil {
		return fmt.Errorf("match submission failed: %w", err)
	}

	standings, err := client.getLeaderboard(ctx, cfg.TopN)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	elapsed := time.Since(stats.StartTime)
	log.Info(ctx, "load test finished",
		logger.Int("registered", stats.Registered),
		logger.Int("submitted", stats.Submitted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("errors", stats.Errors),
		logger.String("elapsed", elapsed.String()),
	)
	for _, s := range standings {
		log.Info(ctx, "standing",
			logger.Int("rank", s.Rank),
			logger.String("name", s.Name),
			logger.Float64("score", s.Score),
			logger.Float64("trueSkill", r.skills[s.ID]),
		)
	}

	if stats.Errors > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.Errors, cfg.NumMatches)
	}
	return nil
}

func registerRoster(ctx context.Context, client *apiClient, cfg *Config, stats *Stats) ([]string, error) {
	ids := make([]string, 0, cfg.NumPlayers)
	for i := 0; i < cfg.NumPlayers; i++ {
		id, err := client.registerPlayer(ctx, fmt.Sprintf("loadtest-player-%02d", i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		stats.Registered++
	}
	return ids, nil
}

// submitMatches fans the generated matches out over cfg.Workers posters.
func submitMatches(ctx context.Context, client *apiClient, cfg *Config, matches []generatedMatch, stats *Stats) error {
	work := make(chan generatedMatch)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range work {
				duplicate, err := client.recordMatch(ctx, m)
				stats.record(duplicate, err)
			}
		}()
	}

	for _, m := range matches {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return ctx.Err()
		case work <- m:
		}
	}
	close(work)
	wg.Wait()
	return nil
}
