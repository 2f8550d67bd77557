/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "slices"

type Phase string

const (
	PhaseJoining  Phase = "joining"
	PhaseWriting  Phase = "writing"
	PhaseGuessing Phase = "guessing"
	PhaseResults  Phase = "results"
	PhaseEnded    Phase = "ended"
)

var transitions = map[Phase][]Phase{
	PhaseJoining:  {PhaseWriting, PhaseEnded},
	PhaseWriting:  {PhaseGuessing, PhaseEnded},
	PhaseGuessing: {PhaseResults, PhaseEnded},
	PhaseResults:  {PhaseWriting, PhaseEnded},
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseJoining, PhaseWriting, PhaseGuessing, PhaseResults, PhaseEnded:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is a legal successor of p.
func (p Phase) CanTransitionTo(target Phase) bool {
	return slices.Contains(transitions[p], target)
}

// DeriveNextPhase computes the phase implied by the room's data, without
// any explicit action. It only ever moves joining to writing once every
// seat is held, and writing to guessing once every seat has submitted.
func DeriveNextPhase(r *Room) Phase {
	switch r.Phase {
	case PhaseJoining:
		if len(r.Players) == PlayerCount {
			return PhaseWriting
		}
	case PhaseWriting:
		if len(r.Players) == PlayerCount && allSubmitted(r) {
			return PhaseGuessing
		}
	}
	return r.Phase
}

// settle applies derived transitions until the phase stops changing.
func settle(r *Room) {
	for {
		next := DeriveNextPhase(r)
		if next == r.Phase {
			return
		}
		r.Phase = next
	}
}

func allSubmitted(r *Room) bool {
	for _, p := range r.Players {
		if !p.complete() {
			return false
		}
	}
	return true
}

// transition moves r to target, rejecting anything outside the table.
func transition(r *Room, target Phase) error {
	if !r.Phase.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Phase = target
	return nil
}

func requirePhase(r *Room, allowed ...Phase) error {
	if !slices.Contains(allowed, r.Phase) {
		return ErrInvalidTransition
	}
	return nil
}
