// Package quality evaluates candidate match-ups: how balanced a set of
// teams is and how likely each side is to win. All computations are
// read-only over current beliefs; nothing here mutates ratings.
package quality

import (
	"fmt"
	"math"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/skill"
)

// Evaluator computes match quality and win probabilities from beliefs.
type Evaluator struct {
	beta float64
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithBeta sets the performance-variance constant. It must match the value
// used by the skill model for predictions to be consistent with updates.
func WithBeta(beta float64) Option {
	return func(e *Evaluator) {
		if beta > 0 {
			e.beta = beta
		}
	}
}

// New creates an Evaluator with the default beta, adjusted by options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{beta: skill.DefaultBeta}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Quality scores how balanced a match-up is, in [0, 1]. For two teams it is
// the analytic draw probability
//
//	exp(-dmu^2 / 2c^2) * sqrt(n*beta^2 / c^2), c^2 = n*beta^2 + sum sigma_i^2
//
// which peaks at 1 as combined means converge and variances vanish. For
// more than two teams it is the geometric mean of all pairwise qualities,
// which keeps the score in [0, 1] and preserves monotonicity.
func (e *Evaluator) Quality(teams [][]model.Belief) (float64, error) {
	if err := validateTeams(teams, 2); err != nil {
		return 0, err
	}

	product := 1.0
	pairs := 0
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			product *= e.pairQuality(teams[i], teams[j])
			pairs++
		}
	}
	return math.Pow(product, 1/float64(pairs)), nil
}

func (e *Evaluator) pairQuality(a, b []model.Belief) float64 {
	muA, varA := combine(a)
	muB, varB := combine(b)
	n := float64(len(a) + len(b))
	nb2 := n * e.beta * e.beta
	c2 := nb2 + varA + varB
	dmu := muA - muB
	return math.Exp(-dmu*dmu/(2*c2)) * math.Sqrt(nb2/c2)
}

// WinProbability is the probability that team A's performance exceeds team
// B's: the normal CDF of the standardized combined mean difference.
func (e *Evaluator) WinProbability(a, b []model.Belief) (float64, error) {
	if err := validateTeams([][]model.Belief{a, b}, 2); err != nil {
		return 0, err
	}
	muA, varA := combine(a)
	muB, varB := combine(b)
	n := float64(len(a) + len(b))
	denom := math.Sqrt(n*e.beta*e.beta + varA + varB)
	return normCDF((muA - muB) / denom), nil
}

// RankProbabilities estimates each team's probability of finishing first.
// Exact first-place probabilities over more than two Gaussians have no
// closed form, so this normalizes the product of pairwise win
// probabilities. The result sums to 1 and preserves the mean/variance
// ordering.
func (e *Evaluator) RankProbabilities(teams [][]model.Belief) ([]float64, error) {
	if err := validateTeams(teams, 2); err != nil {
		return nil, err
	}

	scores := make([]float64, len(teams))
	total := 0.0
	for i := range teams {
		score := 1.0
		for j := range teams {
			if i == j {
				continue
			}
			p, err := e.WinProbability(teams[i], teams[j])
			if err != nil {
				return nil, err
			}
			score *= p
		}
		scores[i] = score
		total += score
	}

	if total == 0 {
		// Degenerate case: every pairwise probability underflowed.
		uniform := 1 / float64(len(teams))
		for i := range scores {
			scores[i] = uniform
		}
		return scores, nil
	}
	for i := range scores {
		scores[i] /= total
	}
	return scores, nil
}

func combine(team []model.Belief) (mu, variance float64) {
	for _, b := range team {
		mu += b.Mu
		variance += b.Variance()
	}
	return mu, variance
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func validateTeams(teams [][]model.Belief, minTeams int) error {
	if len(teams) < minTeams {
		return fmt.Errorf("%w: need at least %d teams, got %d", model.ErrInvalidFormat, minTeams, len(teams))
	}
	for i, team := range teams {
		if len(team) == 0 {
			return fmt.Errorf("%w: team %d is empty", model.ErrInvalidFormat, i)
		}
	}
	return nil
}
