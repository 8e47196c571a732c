// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// PlayerID identifies a player. IDs are stable UUID strings assigned at
// registration and never reused.
type PlayerID string

// Belief is a Gaussian distribution over a player's latent skill.
// Sigma must stay positive; the skill model enforces a configured floor.
type Belief struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Variance returns sigma squared.
func (b Belief) Variance() float64 {
	return b.Sigma * b.Sigma
}

// Player is the unit of rating. Players are created on registration or on
// first observed participation and are archived rather than deleted.
type Player struct {
	ID         PlayerID  `json:"id"`
	Name       string    `json:"name"`
	Belief     Belief    `json:"belief"`
	MatchCount int       `json:"match_count"`
	LastPlayed time.Time `json:"last_played"`
	Archived   bool      `json:"archived"`
}

// Match is an immutable record of one completed game. Teams[i] finished at
// Ranks[i]; lower rank is better and equal ranks mean a tie. Once recorded a
// match is never mutated; corrections require a compensating match.
type Match struct {
	ID       string       `json:"id"`
	Teams    [][]PlayerID `json:"teams"`
	Ranks    []int        `json:"ranks"`
	PlayedAt time.Time    `json:"played_at"`
}

// Format declares the shape of a game: TeamCount teams of TeamSize players.
// Free-for-all is TeamSize 1 with TeamCount equal to the player count.
type Format struct {
	TeamSize  int `json:"team_size"`
	TeamCount int `json:"team_count"`
}

// PlayersNeeded returns the number of players a full match requires.
func (f Format) PlayersNeeded() int {
	return f.TeamSize * f.TeamCount
}

// TeamAssignment is a candidate, unplayed partition of players into teams.
// It is transient: produced by the matchmaker, consumed by callers, never
// stored.
type TeamAssignment struct {
	Teams          [][]Player `json:"teams"`
	Quality        float64    `json:"quality"`
	CombinedSigma2 float64    `json:"combined_sigma2"`
}

// Key returns a canonical identity for the assignment, independent of team
// ordering and member ordering. Used to dedupe candidates during search.
func (a TeamAssignment) Key() string {
	teams := make([]string, 0, len(a.Teams))
	for _, t := range a.Teams {
		ids := make([]string, 0, len(t))
		for _, p := range t {
			ids = append(ids, string(p.ID))
		}
		sort.Strings(ids)
		key := ""
		for i, id := range ids {
			if i > 0 {
				key += ","
			}
			key += id
		}
		teams = append(teams, key)
	}
	sort.Strings(teams)
	key := ""
	for i, t := range teams {
		if i > 0 {
			key += "|"
		}
		key += t
	}
	return key
}
