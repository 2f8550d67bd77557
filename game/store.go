/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"time"
)

// Store persists room documents. Implementations must make Save a
// compare-and-swap: it succeeds only when the stored version equals
// room.Version, and on success advances room.Version by one.
type Store interface {
	// Create stores a new room at version 1. It fails with ErrRoomExists
	// when the id is taken.
	Create(ctx context.Context, room *Room) error
	// Load returns the current document or ErrRoomNotFound.
	Load(ctx context.Context, id string) (*Room, error)
	// Save writes room if nobody else has saved since it was loaded,
	// otherwise it returns ErrVersionConflict.
	Save(ctx context.Context, room *Room) error
	// Delete removes the room or returns ErrRoomNotFound.
	Delete(ctx context.Context, id string) error
}

// Reaper is implemented by stores that can drop rooms idle since before a
// cutoff.
type Reaper interface {
	Reap(ctx context.Context, before time.Time) (int, error)
}
