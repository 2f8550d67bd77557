/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// quit frees the user's seat. The host role passes to whoever holds the
// lowest remaining seat. An empty room, or any departure once the round
// has started, ends the game.
func quit(r *Room, userID string) error {
	if r.Phase == PhaseEnded {
		return ErrInvalidTransition
	}

	slot, ok := r.Identities[userID]
	if !ok {
		return ErrNotPlayer
	}

	delete(r.Players, slot)
	delete(r.Identities, userID)

	remaining := r.OccupiedSlots()

	if r.HostUserID == userID {
		r.HostUserID = ""
		if len(remaining) > 0 {
			r.HostUserID = r.Players[remaining[0]].UserID
		}
	}

	if len(remaining) == 0 || (r.Phase != PhaseJoining && len(remaining) < PlayerCount) {
		return transition(r, PhaseEnded)
	}

	return nil
}

func endGame(r *Room, userID string) error {
	if !r.IsHost(userID) {
		return ErrNotHost
	}
	return transition(r, PhaseEnded)
}
