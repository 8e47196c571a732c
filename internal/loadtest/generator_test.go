package loadtest

import (
	"fmt"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func testIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
	}
	return ids
}

func TestBuildRoster(t *testing.T) {
	Convey("Given a set of registered player ids", t, func() {
		rng := rand.New(rand.NewSource(1))
		r := buildRoster(testIDs(10), rng)

		Convey("every player gets a true skill inside [10, 40]", func() {
			So(r.skills, ShouldHaveLength, 10)
			for _, s := range r.skills {
				So(s, ShouldBeBetweenOrEqual, 10, 40)
			}
		})

		Convey("the extremes of the range are used", func() {
			lo, hi := 41.0, 9.0
			for _, s := range r.skills {
				if s < lo {
					lo = s
				}
				if s > hi {
					hi = s
				}
			}
			So(lo, ShouldEqual, 10)
			So(hi, ShouldEqual, 40)
		})
	})
}

func TestGenerateMatches(t *testing.T) {
	Convey("Given a roster of ten players", t, func() {
		rng := rand.New(rand.NewSource(7))
		r := buildRoster(testIDs(10), rng)

		Convey("When generating 2v2 matches", func() {
			matches := r.generateMatches(50, 2, rng)

			So(matches, ShouldHaveLength, 50)
			for _, m := range matches {
				So(m.Teams, ShouldHaveLength, 2)
				So(m.Teams[0], ShouldHaveLength, 2)
				So(m.Teams[1], ShouldHaveLength, 2)
				So(m.Ranks, ShouldHaveLength, 2)
				So(m.ID, ShouldNotBeEmpty)

				seen := make(map[string]bool, 4)
				for _, team := range m.Teams {
					for _, id := range team {
						So(seen[id], ShouldBeFalse)
						seen[id] = true
					}
				}
			}
		})

		Convey("Outcomes favor the stronger players over many matches", func() {
			// Find the strongest and weakest players and count 1v1 wins
			// between them; with noise sigma 5 and a 30-point gap the
			// stronger side should dominate.
			var strong, weak string
			for id, s := range r.skills {
				if strong == "" || s > r.skills[strong] {
					strong = id
				}
				if weak == "" || s < r.skills[weak] {
					weak = id
				}
			}

			wins := 0
			for i := 0; i < 100; i++ {
				pa := r.teamPerformance([]string{strong}, rng)
				pb := r.teamPerformance([]string{weak}, rng)
				if pa > pb {
					wins++
				}
			}
			So(wins, ShouldBeGreaterThan, 90)
		})
	})
}
