/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	phases := []Phase{PhaseJoining, PhaseWriting, PhaseGuessing, PhaseResults, PhaseEnded}
	legal := map[[2]Phase]bool{
		{PhaseJoining, PhaseWriting}:  true,
		{PhaseWriting, PhaseGuessing}: true,
		{PhaseGuessing, PhaseResults}: true,
		{PhaseResults, PhaseWriting}:  true,
		{PhaseJoining, PhaseEnded}:    true,
		{PhaseWriting, PhaseEnded}:    true,
		{PhaseGuessing, PhaseEnded}:   true,
		{PhaseResults, PhaseEnded}:    true,
	}

	for _, from := range phases {
		for _, to := range phases {
			assert.Equal(t, legal[[2]Phase{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestDeriveNextPhase(t *testing.T) {
	t.Run("joining waits for four players", func(t *testing.T) {
		r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)
		for _, id := range []string{"u1", "u2", "u3"} {
			_, err := join(r, id, "", false)
			require.NoError(t, err)
			assert.Equal(t, PhaseJoining, DeriveNextPhase(r))
		}

		_, err := join(r, "u4", "", false)
		require.NoError(t, err)
		assert.Equal(t, PhaseWriting, DeriveNextPhase(r))
	})

	t.Run("writing waits for every submission", func(t *testing.T) {
		r := newFullRoom(t)
		for _, id := range []string{"u1", "u2", "u3"} {
			require.NoError(t, submitSentences(r, id, []string{"a", "b", "c"}))
			assert.Equal(t, PhaseWriting, DeriveNextPhase(r))
		}

		require.NoError(t, submitSentences(r, "u4", []string{"a", "b", "c"}))
		assert.Equal(t, PhaseGuessing, DeriveNextPhase(r))
	})

	t.Run("submitted flag without sentences does not count", func(t *testing.T) {
		r := newFullRoom(t)
		for _, p := range r.Players {
			p.Submitted = true
			p.Sentences = []string{"a", "b", "c"}
		}
		r.Players[Slot3].Sentences = []string{"a", "", "c"}

		assert.Equal(t, PhaseWriting, DeriveNextPhase(r))
	})

	t.Run("guessing never advances on its own", func(t *testing.T) {
		r := newGuessingRoom(t)
		for _, id := range []string{"u1", "u2", "u3", "u4"} {
			require.NoError(t, submitGuess(r, id, fixedAssignment()))
		}
		assert.Equal(t, PhaseGuessing, DeriveNextPhase(r))
	})

	t.Run("ended is terminal", func(t *testing.T) {
		r := newFullRoom(t)
		r.Phase = PhaseEnded
		assert.Equal(t, PhaseEnded, DeriveNextPhase(r))
	})
}

func TestSubmitSentencesOutsideWritingIsRejected(t *testing.T) {
	r := newGuessingRoom(t)
	before := r.Clone()

	err := submitSentences(r, "u1", []string{"x", "y", "z"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before, r)
}

func TestSubmitSentencesTwiceIsRejected(t *testing.T) {
	r := newFullRoom(t)
	require.NoError(t, submitSentences(r, "u1", []string{"a", "b", "c"}))

	assert.ErrorIs(t, submitSentences(r, "u1", []string{"d", "e", "f"}), ErrInvalidTransition)
	assert.Equal(t, []string{"a", "b", "c"}, r.Players[Slot1].Sentences)
}

func TestSubmitSentencesByViewer(t *testing.T) {
	r := newFullRoom(t)

	assert.ErrorIs(t, submitSentences(r, "watcher", []string{"a", "b", "c"}), ErrNotPlayer)
}

func TestCleanSentences(t *testing.T) {
	got, err := CleanSentences([]string{" one ", "two", "three\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, got)

	for _, in := range [][]string{
		nil,
		{"one", "two"},
		{"one", "two", "three", "four"},
		{"one", "  ", "three"},
	} {
		_, err := CleanSentences(in)
		assert.ErrorIs(t, err, ErrIncompleteSubmission, "%q", in)
	}
}

func TestRevealScoresOnceAndMovesToResults(t *testing.T) {
	r := newGuessingRoom(t)
	require.NoError(t, submitGuess(r, "u2", fixedAssignment()))

	require.NoError(t, reveal(r, "u1", DefaultPointsPool))
	assert.Equal(t, PhaseResults, r.Phase)
	assert.Equal(t, 12, r.Scores["name2"])

	assert.ErrorIs(t, reveal(r, "u1", DefaultPointsPool), ErrInvalidTransition)
	assert.Equal(t, 12, r.Scores["name2"])
}

func TestLateGuessIsRecordedButNotScored(t *testing.T) {
	r := newGuessingRoom(t)
	require.NoError(t, reveal(r, "u1", DefaultPointsPool))

	require.NoError(t, submitGuess(r, "u3", fixedAssignment()))
	assert.Contains(t, r.Guesses, "u3")
	assert.Equal(t, 0, r.Scores["name3"])
	assert.Empty(t, r.Result.Winners)
}

func TestSubmitGuessRules(t *testing.T) {
	r := newFullRoom(t)
	assert.ErrorIs(t, submitGuess(r, "u1", fixedAssignment()), ErrInvalidTransition)

	r = newGuessingRoom(t)
	require.NoError(t, submitGuess(r, "viewer-1", fixedAssignment()))
	assert.Equal(t, Guesser{Kind: Viewer, UserID: "viewer-1"}, r.Guesses["viewer-1"].Guesser)

	require.NoError(t, submitGuess(r, "u2", fixedAssignment()))
	assert.Equal(t, Guesser{Kind: SlotHolder, Slot: Slot2, UserID: "u2"}, r.Guesses["u2"].Guesser)

	assert.ErrorIs(t, submitGuess(r, "u2", fixedAssignment()), ErrAlreadyGuessed)
}

func TestCheckGuess(t *testing.T) {
	assert.NoError(t, CheckGuess(fixedAssignment()))

	partial := fixedAssignment()
	delete(partial, Slot4)
	assert.ErrorIs(t, CheckGuess(partial), ErrIncompleteSubmission)

	bad := fixedAssignment()
	bad[Slot2] = "Jester"
	assert.ErrorIs(t, CheckGuess(bad), ErrIncompleteSubmission)

	extra := fixedAssignment()
	extra["slot_5"] = Brahmin
	assert.ErrorIs(t, CheckGuess(extra), ErrIncompleteSubmission)
}

func TestStartNewRound(t *testing.T) {
	r := newGuessingRoom(t)
	require.NoError(t, submitGuess(r, "u1", fixedAssignment()))
	require.NoError(t, reveal(r, "u1", DefaultPointsPool))

	identities := r.Clone().Identities
	scores := r.Clone().Scores

	// Deterministic source: every draw picks index 0.
	require.NoError(t, startNewRound(r, "u3", func(int) int { return 0 }))

	assert.Equal(t, PhaseWriting, r.Phase)
	assert.Equal(t, 2, r.Round)
	assert.Equal(t, identities, r.Identities)
	assert.Equal(t, scores, r.Scores)
	assert.Equal(t, "u1", r.HostUserID)
	assert.Empty(t, r.Guesses)
	assert.Nil(t, r.Result)
	assert.True(t, IsPermutation(r.Assignment))
	for _, p := range r.Players {
		assert.False(t, p.Submitted)
		assert.Nil(t, p.Sentences)
	}
	require.NoError(t, r.Validate())
}

func TestStartNewRoundOutsideResults(t *testing.T) {
	r := newGuessingRoom(t)

	assert.ErrorIs(t, startNewRound(r, "u1", nil), ErrInvalidTransition)
	assert.Equal(t, PhaseGuessing, r.Phase)
}
