package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/courtside/internal/adapters/repository"
	service "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()

	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	s := service.New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestRegisterPlayer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		s := startService(t)

		Convey("When a new name is registered", func() {
			p, created, err := s.RegisterPlayer(ctx, "Ana")

			Convey("Then a player at the prior belief is created", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(p.ID, ShouldNotBeEmpty)
				So(p.Belief.Mu, ShouldAlmostEqual, 25.0, 1e-9)
			})

			Convey("And registering the same name again is idempotent", func() {
				So(err, ShouldBeNil)
				again, createdAgain, err := s.RegisterPlayer(ctx, "ana")
				So(err, ShouldBeNil)
				So(createdAgain, ShouldBeFalse)
				So(again.ID, ShouldEqual, p.ID)
			})
		})

		Convey("When the name is blank", func() {
			_, _, err := s.RegisterPlayer(ctx, "   ")

			Convey("Then it is rejected as invalid", func() {
				So(errors.Is(err, model.ErrInvalidFormat), ShouldBeTrue)
			})
		})
	})
}

func TestRecordMatchDedupe(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		s := startService(t)
		match := model.Match{
			ID:    "match-1",
			Teams: [][]model.PlayerID{{"ana"}, {"bob"}},
			Ranks: []int{0, 1},
		}

		Convey("When the same match is submitted twice", func() {
			deltas, dup, err := s.RecordMatch(ctx, match)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			So(len(deltas), ShouldEqual, 2)

			replayDeltas, replayDup, err := s.RecordMatch(ctx, match)

			Convey("Then the replay is flagged and ratings do not move again", func() {
				So(err, ShouldBeNil)
				So(replayDup, ShouldBeTrue)
				So(replayDeltas, ShouldBeNil)

				standings, err := s.QueryLeaderboard(ctx, 0)
				So(err, ShouldBeNil)
				So(len(standings), ShouldEqual, 2)
				for _, st := range standings {
					So(st.Player.MatchCount, ShouldEqual, 1)
				}
			})
		})

		Convey("When an invalid match fails", func() {
			bad := model.Match{
				ID:    "match-2",
				Teams: [][]model.PlayerID{{"ana"}},
				Ranks: []int{0},
			}
			_, _, err := s.RecordMatch(ctx, bad)
			So(errors.Is(err, model.ErrInvalidFormat), ShouldBeTrue)

			Convey("Then its ID is released for retry", func() {
				fixed := model.Match{
					ID:    "match-2",
					Teams: [][]model.PlayerID{{"ana"}, {"bob"}},
					Ranks: []int{0, 1},
				}
				_, dup, err := s.RecordMatch(ctx, fixed)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})

		Convey("When a match arrives without an ID", func() {
			anon := model.Match{
				Teams: [][]model.PlayerID{{"cid"}, {"dee"}},
				Ranks: []int{0, 1},
			}
			_, dup1, err1 := s.RecordMatch(ctx, anon)
			_, dup2, err2 := s.RecordMatch(ctx, anon)

			Convey("Then each submission counts as a distinct match", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(dup1, ShouldBeFalse)
				So(dup2, ShouldBeFalse)
			})
		})
	})
}

func TestQueryLeaderboard(t *testing.T) {
	ctx := context.Background()

	Convey("Given recorded results", t, func() {
		s := startService(t)

		// ana beats bob twice, bob beats cid once.
		for _, m := range []model.Match{
			{ID: "m1", Teams: [][]model.PlayerID{{"ana"}, {"bob"}}, Ranks: []int{0, 1}},
			{ID: "m2", Teams: [][]model.PlayerID{{"ana"}, {"bob"}}, Ranks: []int{0, 1}},
			{ID: "m3", Teams: [][]model.PlayerID{{"bob"}, {"cid"}}, Ranks: []int{0, 1}},
		} {
			_, _, err := s.RecordMatch(ctx, m)
			So(err, ShouldBeNil)
		}

		Convey("When querying the full leaderboard", func() {
			standings, err := s.QueryLeaderboard(ctx, 0)

			Convey("Then the repeat winner leads", func() {
				So(err, ShouldBeNil)
				So(len(standings), ShouldEqual, 3)
				So(standings[0].Player.ID, ShouldEqual, model.PlayerID("ana"))
				So(standings[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When querying with a limit", func() {
			standings, err := s.QueryLeaderboard(ctx, 2)

			Convey("Then the tail is cut off", func() {
				So(err, ShouldBeNil)
				So(len(standings), ShouldEqual, 2)
			})
		})
	})
}

func TestSuggestAndProbability(t *testing.T) {
	ctx := context.Background()

	seed := []model.Player{
		{ID: "a", Name: "a", Belief: model.Belief{Mu: 10, Sigma: 1}},
		{ID: "b", Name: "b", Belief: model.Belief{Mu: 20, Sigma: 1}},
		{ID: "c", Name: "c", Belief: model.Belief{Mu: 30, Sigma: 1}},
		{ID: "d", Name: "d", Belief: model.Belief{Mu: 40, Sigma: 1}},
	}

	Convey("Given four players of spread skill", t, func() {
		s := startService(t, service.WithStore(repository.NewMemStore(repository.WithPlayers(seed...))))

		Convey("When suggesting 2v2 teams from the whole base", func() {
			res, err := s.SuggestTeams(ctx, nil, model.Format{TeamSize: 2, TeamCount: 2})

			Convey("Then the best split pairs the extremes", func() {
				So(err, ShouldBeNil)
				So(len(res.Assignments), ShouldBeGreaterThan, 0)

				best := res.Assignments[0]
				ids := map[model.PlayerID]int{}
				for ti, team := range best.Teams {
					for _, p := range team {
						ids[p.ID] = ti
					}
				}
				So(ids["a"], ShouldEqual, ids["d"])
				So(ids["b"], ShouldEqual, ids["c"])
			})
		})

		Convey("When suggesting opponents for a fixed pair", func() {
			res, err := s.SuggestOpponents(ctx, []model.PlayerID{"a", "d"}, nil, model.Format{TeamSize: 2, TeamCount: 2})

			Convey("Then the remaining pair is proposed", func() {
				So(err, ShouldBeNil)
				So(len(res.Assignments), ShouldEqual, 1)
			})
		})

		Convey("When a suggestion names an unknown player", func() {
			_, err := s.SuggestTeams(ctx, []model.PlayerID{"a", "b", "c", "ghost"}, model.Format{TeamSize: 2, TeamCount: 2})

			Convey("Then it fails with unknown player", func() {
				So(errors.Is(err, model.ErrUnknownPlayer), ShouldBeTrue)
			})
		})

		Convey("When asking for win probability", func() {
			p, err := s.WinProbability(ctx, []model.PlayerID{"d"}, []model.PlayerID{"a"})

			Convey("Then the stronger side is favored", func() {
				So(err, ShouldBeNil)
				So(p, ShouldBeGreaterThan, 0.9)
			})

			Convey("And the mirror question is complementary", func() {
				So(err, ShouldBeNil)
				q, err := s.WinProbability(ctx, []model.PlayerID{"a"}, []model.PlayerID{"d"})
				So(err, ShouldBeNil)
				So(p+q, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When asking for match quality", func() {
			even, err := s.MatchQuality(ctx, [][]model.PlayerID{{"a", "d"}, {"b", "c"}})
			So(err, ShouldBeNil)
			lopsided, err := s.MatchQuality(ctx, [][]model.PlayerID{{"c", "d"}, {"a", "b"}})
			So(err, ShouldBeNil)

			Convey("Then the even split scores higher", func() {
				So(even, ShouldBeGreaterThan, lopsided)
			})
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a running service with players", t, func() {
		s := startService(t)
		_, _, err := s.RegisterPlayer(context.Background(), "ana")
		So(err, ShouldBeNil)

		Convey("When fetching stats", func() {
			stats := s.GetStats()

			Convey("Then counts are reported", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["totalPlayers"], ShouldEqual, 1)
			})
		})
	})
}
