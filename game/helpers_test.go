/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// fixedAssignment maps slot_N to the Nth canonical role.
func fixedAssignment() map[Slot]Role {
	a := make(map[Slot]Role, PlayerCount)
	for i, slot := range Slots {
		a[slot] = Roles[i]
	}
	return a
}

// newFullRoom returns a room in the writing phase with users u1..u4 seated
// in order; u1 is the host.
func newFullRoom(t *testing.T) *Room {
	t.Helper()

	r := NewRoom("ROOM42", Settings{}, "u1", fixedAssignment(), testTime)
	for i := 1; i <= PlayerCount; i++ {
		_, err := join(r, fmt.Sprintf("u%d", i), fmt.Sprintf("name%d", i), false)
		require.NoError(t, err)
	}
	settle(r)
	require.Equal(t, PhaseWriting, r.Phase)
	require.NoError(t, r.Validate())

	return r
}

// newGuessingRoom is newFullRoom with every sentence handed in.
func newGuessingRoom(t *testing.T) *Room {
	t.Helper()

	r := newFullRoom(t)
	for i := 1; i <= PlayerCount; i++ {
		require.NoError(t, submitSentences(r, fmt.Sprintf("u%d", i), []string{"a", "b", "c"}))
	}
	settle(r)
	require.Equal(t, PhaseGuessing, r.Phase)

	return r
}
