// Package leaderboard derives a total order over players from their
// beliefs using a conservative skill estimate.
package leaderboard

import (
	"sort"

	"github.com/okian/courtside/internal/domain/model"
)

// DefaultConservativeK is the number of standard deviations subtracted
// from the mean when ranking. Three sigmas put a fresh default player at
// exactly zero.
const DefaultConservativeK = 3.0

// Standing is one leaderboard row. Players with equal conservative scores
// share a rank; the next distinct score takes the following rank.
type Standing struct {
	Rank   int          `json:"rank"`
	Player model.Player `json:"player"`
	Score  float64      `json:"score"`
}

// Leaderboard ranks players by mu - k*sigma.
type Leaderboard struct {
	k float64
}

// Option applies a configuration option to the Leaderboard.
type Option func(*Leaderboard)

// WithConservativeK sets the sigma multiple used in the conservative score.
func WithConservativeK(k float64) Option {
	return func(l *Leaderboard) {
		if k >= 0 {
			l.k = k
		}
	}
}

// New creates a Leaderboard with the default k, adjusted by options.
func New(opts ...Option) *Leaderboard {
	l := &Leaderboard{k: DefaultConservativeK}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Score returns the conservative estimate for a single belief.
func (l *Leaderboard) Score(b model.Belief) float64 {
	return b.Mu - l.k*b.Sigma
}

// Rank orders players by conservative score descending. Archived players
// are skipped. Ties break by player id ascending, so repeated calls over an
// unchanged set yield an identical sequence.
func (l *Leaderboard) Rank(players []model.Player) []Standing {
	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		if p.Archived {
			continue
		}
		standings = append(standings, Standing{Player: p, Score: l.Score(p.Belief)})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Player.ID < standings[j].Player.ID
	})

	rank := 0
	for i := range standings {
		if i == 0 || standings[i].Score != standings[i-1].Score {
			rank++
		}
		standings[i].Rank = rank
	}
	return standings
}
