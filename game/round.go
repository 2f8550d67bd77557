/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"maps"
	"strings"
)

// CleanSentences trims the submission and rejects anything short of three
// non-empty sentences.
func CleanSentences(sentences []string) ([]string, error) {
	if len(sentences) != SentenceCount {
		return nil, ErrIncompleteSubmission
	}

	out := make([]string, SentenceCount)
	for i, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, ErrIncompleteSubmission
		}
		out[i] = s
	}
	return out, nil
}

// CheckGuess rejects guesses that do not name a valid role for every seat.
func CheckGuess(roles map[Slot]Role) error {
	if len(roles) != PlayerCount {
		return ErrIncompleteSubmission
	}
	for _, slot := range Slots {
		role, ok := roles[slot]
		if !ok || !role.Valid() {
			return ErrIncompleteSubmission
		}
	}
	return nil
}

func seated(r *Room, userID string) (*Player, error) {
	slot, ok := r.Identities[userID]
	if !ok {
		return nil, ErrNotPlayer
	}
	return r.Players[slot], nil
}

func submitSentences(r *Room, userID string, sentences []string) error {
	if err := requirePhase(r, PhaseWriting); err != nil {
		return err
	}

	p, err := seated(r, userID)
	if err != nil {
		return err
	}
	if p.Submitted {
		return ErrInvalidTransition
	}

	p.Sentences = sentences
	p.Submitted = true

	return nil
}

// submitGuess records one guess per user per round. Guesses are accepted
// after the reveal too, but scoring has already run by then.
func submitGuess(r *Room, userID string, roles map[Slot]Role) error {
	if err := requirePhase(r, PhaseGuessing, PhaseResults); err != nil {
		return err
	}
	if _, ok := r.Guesses[userID]; ok {
		return ErrAlreadyGuessed
	}

	r.Guesses[userID] = Guess{
		Guesser: GuesserFor(r, userID),
		Roles:   maps.Clone(roles),
	}

	return nil
}

// reveal scores the round exactly once and moves to results.
func reveal(r *Room, userID string, pool int) error {
	if err := requirePhase(r, PhaseGuessing); err != nil {
		return err
	}
	if _, err := seated(r, userID); err != nil {
		return err
	}

	res := Score(r, pool)
	award(r, res)
	r.Result = &res

	return transition(r, PhaseResults)
}

// startNewRound redeals the roles and wipes everything round-scoped while
// keeping seats, host and scores.
func startNewRound(r *Room, userID string, intn Intn) error {
	if err := requirePhase(r, PhaseResults); err != nil {
		return err
	}
	if _, err := seated(r, userID); err != nil {
		return err
	}

	r.Assignment = Deal(intn)
	for _, p := range r.Players {
		p.Submitted = false
		p.Sentences = nil
	}
	clear(r.Guesses)
	r.Result = nil
	r.Round++

	return transition(r, PhaseWriting)
}
