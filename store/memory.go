/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store provides Room Store implementations for the game service.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/Seednode/satyasatyam/game"
)

// Memory keeps rooms in process memory. Stored rooms are deep copies, so
// callers never share state with the store.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]*game.Room
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*game.Room),
	}
}

func (m *Memory) Create(ctx context.Context, room *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[room.ID]; exists {
		return game.ErrRoomExists
	}

	room.Version = 1
	m.rooms[room.ID] = room.Clone()

	return nil
}

func (m *Memory) Load(ctx context.Context, id string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[id]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, room *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.rooms[room.ID]
	if !ok {
		return game.ErrRoomNotFound
	}
	if current.Version != room.Version {
		return game.ErrVersionConflict
	}

	room.Version++
	m.rooms[room.ID] = room.Clone()

	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; !ok {
		return game.ErrRoomNotFound
	}
	delete(m.rooms, id)

	return nil
}

func (m *Memory) Reap(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, room := range m.rooms {
		if room.UpdatedAt.Before(before) {
			delete(m.rooms, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many rooms are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rooms)
}
