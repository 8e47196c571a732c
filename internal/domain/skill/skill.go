// Package skill implements the Gaussian belief model used for rating
// players: team aggregation and the ranked-outcome update rule.
//
// Each player's skill is a Gaussian (mu, sigma). A team performs as the sum
// of independent member performances. After a match the observed finishing
// order is folded into every pair of teams through a truncated-Gaussian
// correction, then propagated back to members weighted by their share of
// the team variance.
package skill

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/courtside/internal/domain/model"
)

// Default model parameters. Sigma starts at a third of the initial mean so
// that mu - 3*sigma of a fresh player is zero; beta at half the initial
// sigma gives skill a strong but not deterministic influence on outcomes.
const (
	DefaultMu              = 25.0
	DefaultSigma           = DefaultMu / 3
	DefaultBeta            = DefaultSigma / 2
	DefaultDrawProbability = 0.10
	DefaultSigmaFloor      = DefaultSigma / 100
)

// Model holds the rating parameters. All operations are pure; beliefs go in
// by value and come out by value.
type Model struct {
	mu0        float64
	sigma0     float64
	beta       float64
	drawProb   float64
	sigmaFloor float64
}

// New creates a Model with default parameters, adjusted by options.
func New(opts ...Option) *Model {
	m := &Model{
		mu0:        DefaultMu,
		sigma0:     DefaultSigma,
		beta:       DefaultBeta,
		drawProb:   DefaultDrawProbability,
		sigmaFloor: DefaultSigmaFloor,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// DefaultBelief is the belief assigned to a player with no history.
func (m *Model) DefaultBelief() model.Belief {
	return model.Belief{Mu: m.mu0, Sigma: m.sigma0}
}

// Beta returns the performance-variance constant.
func (m *Model) Beta() float64 {
	return m.beta
}

// SigmaFloor returns the lower bound applied to sigma after updates.
func (m *Model) SigmaFloor() float64 {
	return m.sigmaFloor
}

// TeamBelief combines member beliefs into one team-performance belief:
// mean is the sum of member means, variance the sum of member variances.
func (m *Model) TeamBelief(members []model.Belief) model.Belief {
	var mu, variance float64
	for _, b := range members {
		mu += b.Mu
		variance += b.Variance()
	}
	return model.Belief{Mu: mu, Sigma: math.Sqrt(variance)}
}

// drawMargin is the performance-difference band treated as a tie for a pair
// of teams totalling playerCount players.
func (m *Model) drawMargin(playerCount int) float64 {
	return normPPF((m.drawProb+1)/2) * math.Sqrt(float64(playerCount)) * m.beta
}

// Update folds an observed finishing order into the given beliefs and
// returns the posterior beliefs in the same team/member shape. teams[i]
// finished at ranks[i]; lower is better, equal ranks are a tie.
//
// Every ordered pair of teams contributes one truncated-Gaussian correction.
// Mean corrections add across pairs; variance shrink factors multiply.
// Sigma never drops below the configured floor.
func (m *Model) Update(teams [][]model.Belief, ranks []int) ([][]model.Belief, error) {
	if err := validateOutcome(teams, ranks); err != nil {
		return nil, err
	}

	deltas := make([][]float64, len(teams))
	shrink := make([][]float64, len(teams))
	for i, team := range teams {
		deltas[i] = make([]float64, len(team))
		shrink[i] = make([]float64, len(team))
		for k := range team {
			shrink[i][k] = 1
		}
	}

	beta2 := m.beta * m.beta
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			ti := m.TeamBelief(teams[i])
			tj := m.TeamBelief(teams[j])
			n := len(teams[i]) + len(teams[j])
			c2 := ti.Variance() + tj.Variance() + float64(n)*beta2
			c := math.Sqrt(c2)
			eps := m.drawMargin(n) / c

			var v, w float64
			signI := 1.0
			switch {
			case ranks[i] == ranks[j]:
				v, w = vwWithin((ti.Mu-tj.Mu)/c, eps)
			case ranks[i] < ranks[j]:
				v, w = vwExceeds((ti.Mu-tj.Mu)/c, eps)
			default:
				v, w = vwExceeds((tj.Mu-ti.Mu)/c, eps)
				signI = -1
			}

			apply(teams[i], deltas[i], shrink[i], signI*v, w, c, c2)
			apply(teams[j], deltas[j], shrink[j], -signI*v, w, c, c2)
		}
	}

	out := make([][]model.Belief, len(teams))
	for i, team := range teams {
		out[i] = make([]model.Belief, len(team))
		for k, b := range team {
			sigma := math.Sqrt(b.Variance() * shrink[i][k])
			if sigma < m.sigmaFloor {
				sigma = m.sigmaFloor
			}
			out[i][k] = model.Belief{Mu: b.Mu + deltas[i][k], Sigma: sigma}
		}
	}
	return out, nil
}

// apply distributes one pairwise team correction to team members, weighted
// by each member's share of the team variance.
func apply(team []model.Belief, deltas, shrink []float64, v, w, c, c2 float64) {
	for k, b := range team {
		variance := b.Variance()
		deltas[k] += variance / c * v
		factor := 1 - variance/c2*w
		if factor < tiny {
			factor = tiny
		}
		shrink[k] *= factor
	}
}

// validateOutcome rejects shapes the update rule cannot interpret: fewer
// than two teams, empty teams, mismatched rank cardinality, or ranks that
// skip an integer.
func validateOutcome(teams [][]model.Belief, ranks []int) error {
	if len(teams) < 2 {
		return fmt.Errorf("%w: need at least two teams, got %d", model.ErrInvalidFormat, len(teams))
	}
	if len(ranks) != len(teams) {
		return fmt.Errorf("%w: %d teams but %d ranks", model.ErrInvalidFormat, len(teams), len(ranks))
	}
	for i, team := range teams {
		if len(team) == 0 {
			return fmt.Errorf("%w: team %d is empty", model.ErrInvalidFormat, i)
		}
	}

	distinct := make([]int, 0, len(ranks))
	seen := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			distinct = append(distinct, r)
		}
	}
	sort.Ints(distinct)
	for i := 1; i < len(distinct); i++ {
		if distinct[i] != distinct[i-1]+1 {
			return fmt.Errorf("%w: ranks skip from %d to %d", model.ErrInvalidFormat, distinct[i-1], distinct[i])
		}
	}
	return nil
}
