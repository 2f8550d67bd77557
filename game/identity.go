/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"strings"
)

// Resolution is where a user ends up in a room: a seat, or viewer status.
type Resolution struct {
	Slot    Slot `json:"slot,omitempty"`
	Viewer  bool `json:"viewer"`
	Claimed bool `json:"claimed"`
	Full    bool `json:"full"`
}

// Resolve decides the seat for userID without mutating the room.
//
// A user already in the identity map always gets their seat back. Anyone
// else gets the lowest free seat while the room is still joining, unless
// they asked to watch. When no seat is free the result is a viewer
// resolution together with ErrRoomFull.
func Resolve(r *Room, userID string, wantViewer bool) (Resolution, error) {
	if slot, ok := r.Identities[userID]; ok {
		return Resolution{Slot: slot}, nil
	}
	if wantViewer {
		return Resolution{Viewer: true}, nil
	}

	slot, ok := r.freeSlot()
	if !ok {
		return Resolution{Viewer: true}, ErrRoomFull
	}
	if r.Phase != PhaseJoining {
		return Resolution{Viewer: true}, nil
	}

	return Resolution{Slot: slot, Claimed: true}, nil
}

// GuesserFor tags userID as a seated player or a viewer.
func GuesserFor(r *Room, userID string) Guesser {
	if slot, ok := r.Identities[userID]; ok {
		return Guesser{Kind: SlotHolder, Slot: slot, UserID: userID}
	}
	return Guesser{Kind: Viewer, UserID: userID}
}

// seatName validates the requested display name for slot.
func seatName(r *Room, slot Slot, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if r.Settings.RequireNames {
			return "", ErrNameRequired
		}
		name = fmt.Sprintf("Player %d", slot.Number())
	}
	if r.nameTaken(name) {
		return "", ErrDuplicateName
	}
	return name, nil
}

// claim seats userID in slot, recording the identity and an empty score.
func claim(r *Room, slot Slot, userID, name string) {
	if len(r.Players) == 0 {
		if _, seated := r.Identities[r.HostUserID]; !seated {
			r.HostUserID = userID
		}
	}

	r.Players[slot] = &Player{Name: name, UserID: userID}
	r.Identities[userID] = slot
	if _, ok := r.Scores[name]; !ok {
		r.Scores[name] = 0
	}
}

// join resolves userID and, when a new seat is due, claims it.
func join(r *Room, userID, name string, wantViewer bool) (Resolution, error) {
	res, err := Resolve(r, userID, wantViewer)
	if err != nil || !res.Claimed {
		return res, err
	}

	seated, err := seatName(r, res.Slot, name)
	if err != nil {
		return Resolution{}, err
	}
	claim(r, res.Slot, userID, seated)

	return res, nil
}
