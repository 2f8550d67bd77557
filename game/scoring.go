/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"slices"
)

// DefaultPointsPool is split evenly between everyone who guessed the whole
// assignment in a round.
const DefaultPointsPool = 12

const viewerLabelLength = 6

// ViewerLabel is the anonymised leaderboard name of a slotless guesser.
func ViewerLabel(userID string) string {
	short := userID
	if len(short) > viewerLabelLength {
		short = short[:viewerLabelLength]
	}
	return "Viewer " + short
}

// Correct reports whether every seat in the guess matches the assignment.
// There is no partial credit.
func Correct(g Guess, assignment map[Slot]Role) bool {
	for _, slot := range Slots {
		role, ok := g.Roles[slot]
		if !ok || role != assignment[slot] {
			return false
		}
	}
	return true
}

// label is the scoreboard name for a guesser. Seated players are looked up
// through the identity map; anyone without a seat is shown as a viewer.
func label(r *Room, g Guesser) string {
	if slot, ok := r.Identities[g.UserID]; ok {
		if p, ok := r.Players[slot]; ok {
			return p.Name
		}
	}
	return ViewerLabel(g.UserID)
}

// Score evaluates every guess in r against its assignment and works out
// how the pool is split. It does not touch r.
func Score(r *Room, pool int) RoundResult {
	res := RoundResult{Round: r.Round, Winners: []string{}}

	for _, g := range r.Guesses {
		if Correct(g, r.Assignment) {
			res.Winners = append(res.Winners, label(r, g.Guesser))
		}
	}
	slices.Sort(res.Winners)

	if len(res.Winners) == 0 {
		return res
	}

	res.PointsEach = pool / len(res.Winners)
	res.Dropped = pool - res.PointsEach*len(res.Winners)

	return res
}

// award adds the result to the room's scores.
func award(r *Room, res RoundResult) {
	for _, name := range res.Winners {
		r.Scores[name] += res.PointsEach
	}
}
