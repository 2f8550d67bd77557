/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"cmp"
	"maps"
	"slices"
)

type PlayerView struct {
	Slot      Slot     `json:"slot"`
	Name      string   `json:"name"`
	Host      bool     `json:"host"`
	Submitted bool     `json:"submitted"`
	Sentences []string `json:"sentences,omitempty"`
	Role      Role     `json:"role,omitempty"`
}

// SelfView is what the caller knows about their own place in the room.
type SelfView struct {
	Slot    Slot          `json:"slot,omitempty"`
	Viewer  bool          `json:"viewer"`
	Host    bool          `json:"host"`
	Role    Role          `json:"role,omitempty"`
	Rule    string        `json:"rule,omitempty"`
	Guess   map[Slot]Role `json:"guess,omitempty"`
	Guessed bool          `json:"guessed"`
}

type ScoreEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// View is the projection of a room for one caller. The assignment stays
// hidden until results, apart from the caller's own role.
type View struct {
	RoomID      string        `json:"room_id"`
	Version     int64         `json:"version"`
	Phase       Phase         `json:"phase"`
	Round       int           `json:"round"`
	Settings    Settings      `json:"settings"`
	You         SelfView      `json:"you"`
	Players     []PlayerView  `json:"players"`
	Submitted   int           `json:"submitted"`
	Guesses     int           `json:"guesses"`
	Assignment  map[Slot]Role `json:"assignment,omitempty"`
	Result      *RoundResult  `json:"result,omitempty"`
	Leaderboard []ScoreEntry  `json:"leaderboard"`
}

func revealed(p Phase) bool {
	return p == PhaseResults || p == PhaseEnded
}

// NewView projects r for userID.
func NewView(r *Room, userID string) View {
	v := View{
		RoomID:   r.ID,
		Version:  r.Version,
		Phase:    r.Phase,
		Round:    r.Round,
		Settings: r.Settings,
		Guesses:  len(r.Guesses),
		Result:   r.Result,
		Players:  make([]PlayerView, 0, len(r.Players)),
	}

	self, seatedSelf := r.Identities[userID]
	v.You = SelfView{
		Slot:   self,
		Viewer: !seatedSelf,
		Host:   r.IsHost(userID),
	}
	if seatedSelf {
		v.You.Role = r.Assignment[self]
		v.You.Rule = v.You.Role.Rule()
	}
	if g, ok := r.Guesses[userID]; ok {
		v.You.Guessed = true
		v.You.Guess = maps.Clone(g.Roles)
	}

	showSentences := r.Phase != PhaseJoining && r.Phase != PhaseWriting
	for _, slot := range r.OccupiedSlots() {
		p := r.Players[slot]
		pv := PlayerView{
			Slot:      slot,
			Name:      p.Name,
			Host:      r.IsHost(p.UserID),
			Submitted: p.Submitted,
		}
		if showSentences || slot == self && seatedSelf {
			pv.Sentences = slices.Clone(p.Sentences)
		}
		if revealed(r.Phase) {
			pv.Role = r.Assignment[slot]
		}
		if p.Submitted {
			v.Submitted++
		}
		v.Players = append(v.Players, pv)
	}

	if revealed(r.Phase) {
		v.Assignment = maps.Clone(r.Assignment)
	}

	v.Leaderboard = Leaderboard(r.Scores)

	return v
}

// Leaderboard orders scores by points, highest first, then by name.
func Leaderboard(scores map[string]int) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(scores))
	for name, pts := range scores {
		out = append(out, ScoreEntry{Name: name, Points: pts})
	}
	slices.SortFunc(out, func(a, b ScoreEntry) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
