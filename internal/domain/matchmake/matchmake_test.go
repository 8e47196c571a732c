package matchmake_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/courtside/internal/domain/matchmake"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/quality"
	. "github.com/smartystreets/goconvey/convey"
)

func player(id string, mu, sigma float64) model.Player {
	return model.Player{ID: model.PlayerID(id), Name: id, Belief: model.Belief{Mu: mu, Sigma: sigma}}
}

func teamIDs(team []model.Player) map[string]bool {
	ids := make(map[string]bool, len(team))
	for _, p := range team {
		ids[string(p.ID)] = true
	}
	return ids
}

func TestSuggestTeams(t *testing.T) {
	Convey("Given four players of known skill and a 2v2 format", t, func() {
		mm := matchmake.New(quality.New())
		pool := []model.Player{
			player("a", 10, 1),
			player("b", 20, 1),
			player("c", 30, 1),
			player("d", 40, 1),
		}
		format := model.Format{TeamSize: 2, TeamCount: 2}

		Convey("When suggesting teams", func() {
			res, err := mm.SuggestTeams(context.Background(), pool, format)
			So(err, ShouldBeNil)
			So(res.BudgetExhausted, ShouldBeFalse)
			So(len(res.Assignments), ShouldBeGreaterThanOrEqualTo, 1)

			best := res.Assignments[0]

			Convey("Then the best partition pairs the extremes", func() {
				// {10,40} vs {20,30} minimizes the mean-sum gap.
				var extremes []model.Player
				for _, team := range best.Teams {
					ids := teamIDs(team)
					if ids["a"] {
						extremes = team
					}
				}
				So(extremes, ShouldNotBeNil)
				So(teamIDs(extremes)["d"], ShouldBeTrue)
			})

			Convey("And it beats every alternative partition on quality", func() {
				for _, alt := range res.Assignments[1:] {
					So(best.Quality, ShouldBeGreaterThanOrEqualTo, alt.Quality)
				}
			})
		})

		Convey("When the pool cannot fill the format", func() {
			_, err := mm.SuggestTeams(context.Background(), pool[:3], format)

			Convey("Then it fails with insufficient players", func() {
				So(errors.Is(err, model.ErrInsufficientPlayers), ShouldBeTrue)
			})
		})

		Convey("When the format is malformed", func() {
			_, err := mm.SuggestTeams(context.Background(), pool, model.Format{TeamSize: 2, TeamCount: 1})
			So(errors.Is(err, model.ErrInvalidFormat), ShouldBeTrue)
		})

		Convey("When the pool contains a duplicate player", func() {
			dup := append(append([]model.Player(nil), pool...), pool[0])
			_, err := mm.SuggestTeams(context.Background(), dup, format)
			So(errors.Is(err, model.ErrInvalidFormat), ShouldBeTrue)
		})
	})

	Convey("Given a pool larger than the format needs", t, func() {
		mm := matchmake.New(quality.New())
		pool := []model.Player{
			player("a", 10, 2),
			player("b", 20, 2),
			player("c", 30, 2),
			player("d", 40, 2),
			player("e", 25, 2),
			player("f", 26, 2),
		}

		Convey("When suggesting a 2v2", func() {
			res, err := mm.SuggestTeams(context.Background(), pool, model.Format{TeamSize: 2, TeamCount: 2})
			So(err, ShouldBeNil)

			Convey("Then two players sit out and teams are full", func() {
				best := res.Assignments[0]
				So(len(best.Teams), ShouldEqual, 2)
				So(len(best.Teams[0]), ShouldEqual, 2)
				So(len(best.Teams[1]), ShouldEqual, 2)
			})
		})
	})
}

func TestSuggestTeamsDeterminism(t *testing.T) {
	Convey("Given a pool with several equally balanced partitions", t, func() {
		mm := matchmake.New(quality.New())
		pool := []model.Player{
			player("a", 25, 3),
			player("b", 25, 3),
			player("c", 25, 3),
			player("d", 25, 3),
		}
		format := model.Format{TeamSize: 2, TeamCount: 2}

		Convey("When running the search twice", func() {
			first, err := mm.SuggestTeams(context.Background(), pool, format)
			So(err, ShouldBeNil)
			second, err := mm.SuggestTeams(context.Background(), pool, format)
			So(err, ShouldBeNil)

			Convey("Then the ranked assignments are identical", func() {
				So(len(first.Assignments), ShouldEqual, len(second.Assignments))
				for i := range first.Assignments {
					So(first.Assignments[i].Key(), ShouldEqual, second.Assignments[i].Key())
				}
			})
		})
	})
}

func TestSuggestTeamsBudget(t *testing.T) {
	Convey("Given a tiny evaluation budget", t, func() {
		mm := matchmake.New(quality.New(), matchmake.WithSwapBudget(3))
		pool := make([]model.Player, 8)
		for i := range pool {
			pool[i] = player(fmt.Sprintf("p%d", i), float64(10+i*5), 3)
		}

		Convey("When suggesting a 2v2", func() {
			res, err := mm.SuggestTeams(context.Background(), pool, model.Format{TeamSize: 2, TeamCount: 2})
			So(err, ShouldBeNil)

			Convey("Then the search reports exhaustion but still returns a result", func() {
				So(res.BudgetExhausted, ShouldBeTrue)
				So(len(res.Assignments), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		mm := matchmake.New(quality.New())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pool := make([]model.Player, 6)
		for i := range pool {
			pool[i] = player(fmt.Sprintf("p%d", i), float64(10+i*5), 3)
		}

		Convey("When suggesting teams", func() {
			res, err := mm.SuggestTeams(ctx, pool, model.Format{TeamSize: 2, TeamCount: 2})
			So(err, ShouldBeNil)

			Convey("Then the search reports early exit", func() {
				So(res.BudgetExhausted, ShouldBeTrue)
			})
		})
	})
}

func TestLocalSearch(t *testing.T) {
	Convey("Given a pool above the exhaustive threshold", t, func() {
		mm := matchmake.New(quality.New(), matchmake.WithExhaustiveLimit(4))
		pool := make([]model.Player, 8)
		for i := range pool {
			pool[i] = player(fmt.Sprintf("p%d", i), float64(10+i*7), 3)
		}
		format := model.Format{TeamSize: 2, TeamCount: 2}

		Convey("When suggesting teams", func() {
			res, err := mm.SuggestTeams(context.Background(), pool, format)
			So(err, ShouldBeNil)
			So(len(res.Assignments), ShouldEqual, 1)

			best := res.Assignments[0]

			Convey("Then teams have the requested shape", func() {
				So(len(best.Teams), ShouldEqual, 2)
				So(len(best.Teams[0]), ShouldEqual, 2)
				So(len(best.Teams[1]), ShouldEqual, 2)
			})

			Convey("And no player appears twice", func() {
				seen := map[model.PlayerID]bool{}
				for _, team := range best.Teams {
					for _, p := range team {
						So(seen[p.ID], ShouldBeFalse)
						seen[p.ID] = true
					}
				}
			})

			Convey("And the result matches the exhaustive optimum", func() {
				exact := matchmake.New(quality.New())
				exactRes, err := exact.SuggestTeams(context.Background(), pool, format)
				So(err, ShouldBeNil)
				So(best.Quality, ShouldAlmostEqual, exactRes.Assignments[0].Quality, 1e-6)
			})
		})
	})
}

func TestSuggestOpponents(t *testing.T) {
	Convey("Given a fixed pair and a candidate pool", t, func() {
		mm := matchmake.New(quality.New(), matchmake.WithTopK(5))
		fixed := []model.Player{
			player("x", 28, 3),
			player("y", 22, 3),
		}
		pool := []model.Player{
			player("a", 10, 3),
			player("b", 20, 3),
			player("c", 30, 3),
			player("d", 40, 3),
			player("e", 25, 3),
			// fixed players present in the pool must be ignored
			player("x", 28, 3),
		}
		format := model.Format{TeamSize: 2, TeamCount: 2}

		Convey("When ranking opposing pairs", func() {
			res, err := mm.SuggestOpponents(context.Background(), fixed, pool, format)
			So(err, ShouldBeNil)
			So(len(res.Assignments), ShouldBeGreaterThan, 1)

			Convey("Then the fixed team leads every assignment", func() {
				for _, a := range res.Assignments {
					So(teamIDs(a.Teams[0])["x"], ShouldBeTrue)
					So(teamIDs(a.Teams[0])["y"], ShouldBeTrue)
				}
			})

			Convey("And candidates are ordered by non-increasing quality", func() {
				for i := 1; i < len(res.Assignments); i++ {
					So(res.Assignments[i].Quality, ShouldBeLessThanOrEqualTo, res.Assignments[i-1].Quality+1e-12)
				}
			})

			Convey("And no opponent team contains a fixed player", func() {
				for _, a := range res.Assignments {
					for _, team := range a.Teams[1:] {
						ids := teamIDs(team)
						So(ids["x"], ShouldBeFalse)
						So(ids["y"], ShouldBeFalse)
					}
				}
			})
		})

		Convey("When the fixed team size does not match the format", func() {
			_, err := mm.SuggestOpponents(context.Background(), fixed[:1], pool, format)
			So(errors.Is(err, model.ErrInvalidFormat), ShouldBeTrue)
		})

		Convey("When too few opponents remain", func() {
			_, err := mm.SuggestOpponents(context.Background(), fixed, pool[:1], format)
			So(errors.Is(err, model.ErrInsufficientPlayers), ShouldBeTrue)
		})
	})
}
