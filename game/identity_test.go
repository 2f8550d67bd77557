/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveClaimsLowestFreeSlot(t *testing.T) {
	r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)
	for i, slot := range Slots {
		res, err := join(r, fmt.Sprintf("u%d", i+1), "", false)
		require.NoError(t, err)
		assert.Equal(t, Resolution{Slot: slot, Claimed: true}, res)
	}

	// slot_2 frees up; the next newcomer takes it rather than a higher one.
	r.Phase = PhaseJoining
	require.NoError(t, quit(r, "u2"))

	res, err := join(r, "u5", "", false)
	require.NoError(t, err)
	assert.Equal(t, Slot2, res.Slot)
	require.NoError(t, r.Validate())
}

func TestResolveIsIdempotentForKnownUser(t *testing.T) {
	r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)
	_, err := join(r, "u1", "Asha", false)
	require.NoError(t, err)

	for range 10 {
		res, err := join(r, "u1", "Someone Else", false)
		require.NoError(t, err)
		assert.Equal(t, Resolution{Slot: Slot1}, res)
	}

	// Asking for viewer mode does not unseat an existing player either.
	res, err := join(r, "u1", "", true)
	require.NoError(t, err)
	assert.Equal(t, Slot1, res.Slot)

	assert.Len(t, r.Players, 1)
	assert.Len(t, r.Identities, 1)
	assert.Equal(t, "Asha", r.Players[Slot1].Name)
}

func TestResolveViewerRequest(t *testing.T) {
	r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)

	res, err := join(r, "watcher", "", true)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Viewer: true}, res)
	assert.Empty(t, r.Players)
}

func TestResolveFullRoom(t *testing.T) {
	r := newFullRoom(t)

	res, err := Resolve(r, "late", false)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.True(t, res.Viewer)
	assert.Len(t, r.Players, PlayerCount)
}

func TestResolveOutsideJoiningDoesNotSeat(t *testing.T) {
	r := newFullRoom(t)
	r.Phase = PhaseEnded
	delete(r.Players, Slot4)
	delete(r.Identities, "u4")

	res, err := Resolve(r, "late", false)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Viewer: true}, res)
}

func TestJoinNames(t *testing.T) {
	t.Run("default name", func(t *testing.T) {
		r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)
		_, err := join(r, "u1", "   ", false)
		require.NoError(t, err)
		assert.Equal(t, "Player 1", r.Players[Slot1].Name)
		assert.Contains(t, r.Scores, "Player 1")
	})

	t.Run("name required", func(t *testing.T) {
		r := NewRoom("R", Settings{RequireNames: true}, "u1", fixedAssignment(), testTime)
		_, err := join(r, "u1", "", false)
		assert.ErrorIs(t, err, ErrNameRequired)
		assert.Empty(t, r.Players)
		assert.Empty(t, r.Identities)
	})

	t.Run("duplicate name", func(t *testing.T) {
		r := NewRoom("R", Settings{RequireNames: true}, "u1", fixedAssignment(), testTime)
		_, err := join(r, "u1", "Asha", false)
		require.NoError(t, err)

		_, err = join(r, "u2", " Asha ", false)
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Len(t, r.Players, 1)
	})

	t.Run("rejoining keeps score", func(t *testing.T) {
		r := NewRoom("R", Settings{}, "u1", fixedAssignment(), testTime)
		_, err := join(r, "u1", "Asha", false)
		require.NoError(t, err)
		_, err = join(r, "u2", "Ravi", false)
		require.NoError(t, err)
		r.Scores["Ravi"] = 8

		require.NoError(t, quit(r, "u2"))
		_, err = join(r, "u2-new-device", "Ravi", false)
		require.NoError(t, err)

		assert.Equal(t, 8, r.Scores["Ravi"])
	})
}

func TestNoTwoUsersShareASlot(t *testing.T) {
	r := NewRoom("R", Settings{}, "u0", fixedAssignment(), testTime)
	for i := range 20 {
		_, _ = join(r, fmt.Sprintf("u%d", i%7), "", i%5 == 0)
	}

	holders := make(map[Slot]string)
	for id, slot := range r.Identities {
		prev, taken := holders[slot]
		assert.False(t, taken, "%s held by %s and %s", slot, prev, id)
		holders[slot] = id
	}
	require.NoError(t, r.Validate())
}

func TestGuesserFor(t *testing.T) {
	r := newFullRoom(t)

	assert.Equal(t, Guesser{Kind: SlotHolder, Slot: Slot3, UserID: "u3"}, GuesserFor(r, "u3"))
	assert.Equal(t, Guesser{Kind: Viewer, UserID: "nobody"}, GuesserFor(r, "nobody"))
}
