/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package game holds the room-state coordination core of Satyasatyam: the
// shared room document, the rules that mutate it, and the service that
// applies those rules against a Store with optimistic concurrency.
package game

import (
	"fmt"
	"slices"
	"time"
)

// PlayerCount is the exact number of seats in every room.
const PlayerCount = 4

// SentenceCount is the number of sentences each player writes per round.
const SentenceCount = 3

// Slot is one of the four fixed seats in a room.
type Slot string

const (
	Slot1 Slot = "slot_1"
	Slot2 Slot = "slot_2"
	Slot3 Slot = "slot_3"
	Slot4 Slot = "slot_4"
)

// Slots lists every seat in claim order.
var Slots = [PlayerCount]Slot{Slot1, Slot2, Slot3, Slot4}

// Number returns the 1-based seat number, or 0 for an unknown slot.
func (s Slot) Number() int {
	return slices.Index(Slots[:], s) + 1
}

func (s Slot) Valid() bool {
	return s.Number() > 0
}

type Settings struct {
	RequireNames bool `json:"require_names"`
}

type Player struct {
	Name      string   `json:"name"`
	UserID    string   `json:"user_id"`
	Submitted bool     `json:"submitted"`
	Sentences []string `json:"sentences,omitempty"`
}

// complete reports whether the player has handed in a full set of sentences.
func (p *Player) complete() bool {
	if !p.Submitted || len(p.Sentences) != SentenceCount {
		return false
	}
	for _, s := range p.Sentences {
		if s == "" {
			return false
		}
	}
	return true
}

type GuesserKind string

const (
	SlotHolder GuesserKind = "player"
	Viewer     GuesserKind = "viewer"
)

// Guesser identifies who made a guess: either a seated player or a slotless viewer.
type Guesser struct {
	Kind   GuesserKind `json:"kind"`
	Slot   Slot        `json:"slot,omitempty"`
	UserID string      `json:"user_id"`
}

type Guess struct {
	Guesser Guesser       `json:"guesser"`
	Roles   map[Slot]Role `json:"roles"`
}

// RoundResult records the outcome of the last reveal.
type RoundResult struct {
	Round      int      `json:"round"`
	Winners    []string `json:"winners"`
	PointsEach int      `json:"points_each"`
	Dropped    int      `json:"dropped"`
}

// Room is the shared document for one game. It is the only mutable state
// shared between clients; every action loads it, mutates a copy and saves
// it back under a version check.
type Room struct {
	ID         string           `json:"id"`
	Version    int64            `json:"version"`
	Phase      Phase            `json:"phase"`
	Settings   Settings         `json:"settings"`
	Players    map[Slot]*Player `json:"players"`
	Identities map[string]Slot  `json:"identities"`
	HostUserID string           `json:"host_user_id"`
	Assignment map[Slot]Role    `json:"assignment"`
	Guesses    map[string]Guess `json:"guesses"`
	Scores     map[string]int   `json:"scores"`
	Round      int              `json:"round"`
	Result     *RoundResult     `json:"result,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewRoom returns an empty room in the joining phase with a fresh role
// assignment. The host is recorded but not yet seated.
func NewRoom(id string, settings Settings, hostUserID string, assignment map[Slot]Role, now time.Time) *Room {
	return &Room{
		ID:         id,
		Phase:      PhaseJoining,
		Settings:   settings,
		Players:    make(map[Slot]*Player, PlayerCount),
		Identities: make(map[string]Slot, PlayerCount),
		HostUserID: hostUserID,
		Assignment: assignment,
		Guesses:    make(map[string]Guess),
		Scores:     make(map[string]int),
		Round:      1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of r.
func (r *Room) Clone() *Room {
	c := *r

	c.Players = make(map[Slot]*Player, len(r.Players))
	for slot, p := range r.Players {
		cp := *p
		cp.Sentences = slices.Clone(p.Sentences)
		c.Players[slot] = &cp
	}

	c.Identities = make(map[string]Slot, len(r.Identities))
	for id, slot := range r.Identities {
		c.Identities[id] = slot
	}

	c.Assignment = make(map[Slot]Role, len(r.Assignment))
	for slot, role := range r.Assignment {
		c.Assignment[slot] = role
	}

	c.Guesses = make(map[string]Guess, len(r.Guesses))
	for id, g := range r.Guesses {
		roles := make(map[Slot]Role, len(g.Roles))
		for slot, role := range g.Roles {
			roles[slot] = role
		}
		c.Guesses[id] = Guess{Guesser: g.Guesser, Roles: roles}
	}

	c.Scores = make(map[string]int, len(r.Scores))
	for name, pts := range r.Scores {
		c.Scores[name] = pts
	}

	if r.Result != nil {
		res := *r.Result
		res.Winners = slices.Clone(r.Result.Winners)
		c.Result = &res
	}

	return &c
}

// SlotOf returns the seat held by userID, if any.
func (r *Room) SlotOf(userID string) (Slot, bool) {
	slot, ok := r.Identities[userID]
	return slot, ok
}

// OccupiedSlots returns the held seats in claim order.
func (r *Room) OccupiedSlots() []Slot {
	slots := make([]Slot, 0, len(r.Players))
	for _, s := range Slots {
		if _, ok := r.Players[s]; ok {
			slots = append(slots, s)
		}
	}
	return slots
}

func (r *Room) freeSlot() (Slot, bool) {
	for _, s := range Slots {
		if _, ok := r.Players[s]; !ok {
			return s, true
		}
	}
	return "", false
}

func (r *Room) IsHost(userID string) bool {
	return userID != "" && r.HostUserID == userID
}

func (r *Room) nameTaken(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the document.
func (r *Room) Validate() error {
	if !r.Phase.Valid() {
		return fmt.Errorf("unknown phase %q", r.Phase)
	}
	if len(r.Players) > PlayerCount {
		return fmt.Errorf("%d players seated, at most %d allowed", len(r.Players), PlayerCount)
	}
	if len(r.Identities) != len(r.Players) {
		return fmt.Errorf("%d identities for %d players", len(r.Identities), len(r.Players))
	}
	for id, slot := range r.Identities {
		p, ok := r.Players[slot]
		if !ok {
			return fmt.Errorf("identity %s points at empty %s", id, slot)
		}
		if p.UserID != id {
			return fmt.Errorf("%s is held by %s, identity map says %s", slot, p.UserID, id)
		}
	}
	for slot := range r.Players {
		if !slot.Valid() {
			return fmt.Errorf("unknown slot %q", slot)
		}
	}
	if len(r.Players) > 0 {
		if _, ok := r.Identities[r.HostUserID]; !ok {
			return fmt.Errorf("host %q is not seated", r.HostUserID)
		}
	}
	if !IsPermutation(r.Assignment) {
		return fmt.Errorf("assignment is not a permutation of the roles")
	}
	return nil
}
