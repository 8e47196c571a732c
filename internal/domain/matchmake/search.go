package matchmake

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/metrics"
)

// scored pairs an assignment with its canonical key for deterministic
// tie-breaking.
type scored struct {
	assignment model.TeamAssignment
	key        string
}

// exhaustive enumerates every canonical partition of pool into teamsToFill
// teams of teamSize (any fixed team prepended to each candidate) and ranks
// them by quality. Candidate evaluation fans out over a bounded worker set.
func (m *Matchmaker) exhaustive(ctx context.Context, fixed []model.Player, pool []model.Player, teamsToFill, teamSize int) (Result, error) {
	candidates := make(chan [][]int, 64)
	exhausted := make(chan bool, 1)
	go func() {
		defer close(candidates)
		exhausted <- enumerate(ctx, len(pool), teamsToFill, teamSize, m.swapBudget, candidates)
	}()

	results := make(chan scored, 64)
	var wg sync.WaitGroup
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idxTeams := range candidates {
				s, ok := m.score(fixed, pool, idxTeams)
				if !ok {
					continue
				}
				select {
				case results <- s:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var top []scored
	count := 0
	for s := range results {
		count++
		top = insertTop(top, s, m.topK)
	}
	metrics.RecordMatchmakerCandidates(count)

	res := Result{BudgetExhausted: <-exhausted || ctx.Err() != nil}
	if res.BudgetExhausted {
		metrics.RecordMatchmakerBudgetExhausted()
	}
	for _, s := range top {
		res.Assignments = append(res.Assignments, s.assignment)
	}
	return res, nil
}

// localSearch seeds teams with a snake draft over sorted means, then hill
// climbs with pairwise swaps (including swaps with the bench), accepting a
// swap only on a strict quality improvement or an equal-quality variance
// reduction. The iteration budget doubles as the cancellation point.
func (m *Matchmaker) localSearch(ctx context.Context, pool []model.Player, format model.Format) (Result, error) {
	seeded := make([]model.Player, len(pool))
	copy(seeded, pool)
	sort.Slice(seeded, func(i, j int) bool {
		if seeded[i].Belief.Mu != seeded[j].Belief.Mu {
			return seeded[i].Belief.Mu > seeded[j].Belief.Mu
		}
		return seeded[i].ID < seeded[j].ID
	})

	teams := make([][]model.Player, format.TeamCount)
	idx := 0
	for round := 0; round < format.TeamSize; round++ {
		if round%2 == 0 {
			for t := 0; t < format.TeamCount; t++ {
				teams[t] = append(teams[t], seeded[idx])
				idx++
			}
		} else {
			for t := format.TeamCount - 1; t >= 0; t-- {
				teams[t] = append(teams[t], seeded[idx])
				idx++
			}
		}
	}
	bench := append([]model.Player(nil), seeded[idx:]...)

	best, ok := m.scoreTeams(teams)
	if !ok {
		return Result{}, model.ErrInvalidFormat
	}
	budget := m.swapBudget - 1
	evals := 1
	exhaustedSearch := false

	improved := true
	for improved && !exhaustedSearch {
		improved = false
	scan:
		for t1 := 0; t1 < len(teams); t1++ {
			for p1 := 0; p1 < len(teams[t1]); p1++ {
				for t2 := t1 + 1; t2 < len(teams); t2++ {
					for p2 := 0; p2 < len(teams[t2]); p2++ {
						if budget <= 0 || ctx.Err() != nil {
							exhaustedSearch = true
							break scan
						}
						teams[t1][p1], teams[t2][p2] = teams[t2][p2], teams[t1][p1]
						budget--
						evals++
						if cand, ok := m.scoreTeams(teams); ok && betterSwap(cand, best) {
							best = cand
							improved = true
						} else {
							teams[t1][p1], teams[t2][p2] = teams[t2][p2], teams[t1][p1]
						}
					}
				}
				for b := 0; b < len(bench); b++ {
					if budget <= 0 || ctx.Err() != nil {
						exhaustedSearch = true
						break scan
					}
					teams[t1][p1], bench[b] = bench[b], teams[t1][p1]
					budget--
					evals++
					if cand, ok := m.scoreTeams(teams); ok && betterSwap(cand, best) {
						best = cand
						improved = true
					} else {
						teams[t1][p1], bench[b] = bench[b], teams[t1][p1]
					}
				}
			}
		}
	}

	metrics.RecordMatchmakerCandidates(evals)
	if exhaustedSearch {
		metrics.RecordMatchmakerBudgetExhausted()
	}
	return Result{
		Assignments:     []model.TeamAssignment{best.assignment},
		BudgetExhausted: exhaustedSearch,
	}, nil
}

// score materializes a candidate from pool indices and evaluates it.
func (m *Matchmaker) score(fixed []model.Player, pool []model.Player, idxTeams [][]int) (scored, bool) {
	teams := make([][]model.Player, 0, len(idxTeams)+1)
	if fixed != nil {
		teams = append(teams, fixed)
	}
	for _, idxs := range idxTeams {
		team := make([]model.Player, 0, len(idxs))
		for _, i := range idxs {
			team = append(team, pool[i])
		}
		teams = append(teams, team)
	}
	return m.scoreTeams(teams)
}

// scoreTeams evaluates quality and combined variance for a line-up. The
// returned assignment owns copies of the team slices so callers may keep
// mutating their working state.
func (m *Matchmaker) scoreTeams(teams [][]model.Player) (scored, bool) {
	beliefs := make([][]model.Belief, len(teams))
	owned := make([][]model.Player, len(teams))
	sigma2 := 0.0
	for i, team := range teams {
		beliefs[i] = make([]model.Belief, len(team))
		owned[i] = append([]model.Player(nil), team...)
		for k, p := range team {
			beliefs[i][k] = p.Belief
			sigma2 += p.Belief.Variance()
		}
	}
	q, err := m.eval.Quality(beliefs)
	if err != nil {
		return scored{}, false
	}
	a := model.TeamAssignment{Teams: owned, Quality: q, CombinedSigma2: sigma2}
	return scored{assignment: a, key: a.Key()}, true
}

// better orders candidates for ranking: quality desc, combined variance
// asc, canonical key asc.
func better(a, b scored) bool {
	if a.assignment.Quality > b.assignment.Quality+qualityEps {
		return true
	}
	if b.assignment.Quality > a.assignment.Quality+qualityEps {
		return false
	}
	if a.assignment.CombinedSigma2 != b.assignment.CombinedSigma2 {
		return a.assignment.CombinedSigma2 < b.assignment.CombinedSigma2
	}
	return a.key < b.key
}

// betterSwap decides whether a candidate replaces the incumbent during hill
// climbing: strict quality gain, or equal quality with strictly lower
// combined variance. Lexicographically decreasing, so the climb terminates.
func betterSwap(cand, best scored) bool {
	if cand.assignment.Quality > best.assignment.Quality+qualityEps {
		return true
	}
	if cand.assignment.Quality < best.assignment.Quality-qualityEps {
		return false
	}
	return cand.assignment.CombinedSigma2 < best.assignment.CombinedSigma2-qualityEps
}

// insertTop inserts s into the descending top list, keeping at most k.
func insertTop(top []scored, s scored, k int) []scored {
	pos := len(top)
	for i := range top {
		if better(s, top[i]) {
			pos = i
			break
		}
	}
	if pos == len(top) {
		if len(top) < k {
			return append(top, s)
		}
		return top
	}
	top = append(top, scored{})
	copy(top[pos+1:], top[pos:])
	top[pos] = s
	if len(top) > k {
		top = top[:k]
	}
	return top
}

// enumerate emits every canonical way to fill teamCount teams of teamSize
// from n players, letting the remainder sit out. Empty teams are
// interchangeable, so a player may only open the first empty team. Returns
// true if the walk stopped early (budget or cancellation).
func enumerate(ctx context.Context, n, teamCount, teamSize, budget int, out chan<- [][]int) bool {
	teams := make([][]int, teamCount)
	for i := range teams {
		teams[i] = make([]int, 0, teamSize)
	}
	benchCap := n - teamCount*teamSize
	total := teamCount * teamSize
	emitted := 0
	stopped := false

	var walk func(idx, benchUsed, filled int) bool
	walk = func(idx, benchUsed, filled int) bool {
		if ctx.Err() != nil {
			stopped = true
			return false
		}
		if filled == total {
			if emitted >= budget {
				stopped = true
				return false
			}
			emitted++
			cp := make([][]int, teamCount)
			for i, t := range teams {
				cp[i] = append([]int(nil), t...)
			}
			select {
			case out <- cp:
				return true
			case <-ctx.Done():
				stopped = true
				return false
			}
		}
		if n-idx < total-filled {
			return true
		}

		openedEmpty := false
		for t := range teams {
			if len(teams[t]) == teamSize {
				continue
			}
			if len(teams[t]) == 0 {
				if openedEmpty {
					break
				}
				openedEmpty = true
			}
			teams[t] = append(teams[t], idx)
			ok := walk(idx+1, benchUsed, filled+1)
			teams[t] = teams[t][:len(teams[t])-1]
			if !ok {
				return false
			}
		}
		if benchUsed < benchCap {
			return walk(idx+1, benchUsed+1, filled)
		}
		return true
	}
	walk(0, 0, 0)
	return stopped
}
