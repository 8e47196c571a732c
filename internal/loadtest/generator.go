package loadtest

import (
	"fmt"
	"math"
	"math/rand"
)

// roster is the set of registered players with their hidden true skills.
// Matches are decided by sampling noisy performances around the true
// skill, so the service's inferred ratings should converge toward the
// same ordering.
type roster struct {
	ids    []string
	skills map[string]float64
}

// generatedMatch is one outcome ready for submission.
type generatedMatch struct {
	ID    string
	Teams [][]string
	Ranks []int
}

const performanceNoise = 5.0

// buildRoster assigns each player a true skill spread evenly over [10, 40].
func buildRoster(ids []string, rng *rand.Rand) *roster {
	r := &roster{ids: ids, skills: make(map[string]float64, len(ids))}
	for i, id := range ids {
		r.skills[id] = 10 + 30*float64(i)/math.Max(1, float64(len(ids)-1))
	}
	rng.Shuffle(len(r.ids), func(i, j int) { r.ids[i], r.ids[j] = r.ids[j], r.ids[i] })
	return r
}

// generateMatches produces n matches between random teams, outcomes drawn
// from noisy true-skill performances. Ties in sampled performance are
// practically impossible, so every match has a decisive result.
func (r *roster) generateMatches(n, teamSize int, rng *rand.Rand) []generatedMatch {
	out := make([]generatedMatch, 0, n)
	perMatch := teamSize * 2

	for i := 0; i < n; i++ {
		picked := rng.Perm(len(r.ids))[:perMatch]
		teamA := make([]string, teamSize)
		teamB := make([]string, teamSize)
		for j := 0; j < teamSize; j++ {
			teamA[j] = r.ids[picked[j]]
			teamB[j] = r.ids[picked[teamSize+j]]
		}

		perfA := r.teamPerformance(teamA, rng)
		perfB := r.teamPerformance(teamB, rng)
		ranks := []int{0, 1}
		if perfB > perfA {
			ranks = []int{1, 0}
		}

		out = append(out, generatedMatch{
			ID:    fmt.Sprintf("loadtest-%d-%d", rng.Int63(), i),
			Teams: [][]string{teamA, teamB},
			Ranks: ranks,
		})
	}
	return out
}

func (r *roster) teamPerformance(team []string, rng *rand.Rand) float64 {
	total := 0.0
	for _, id := range team {
		total += r.skills[id] + rng.NormFloat64()*performanceNoise
	}
	return total
}
