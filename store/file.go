/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/satyasatyam/game"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9]{1,32}$`)

// File keeps one JSON document per room in a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a
// partial document. Version checks are only enforced within one process.
type File struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating room directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", game.ErrRoomNotFound
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *File) read(id string) (*game.Room, error) {
	p, err := f.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, game.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading room %s: %w", id, err)
	}

	var room game.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", id, err)
	}
	return &room, nil
}

func (f *File) write(room *game.Room) error {
	p, err := f.path(room.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(room, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.ID, err)
	}

	tmp, err := os.CreateTemp(f.dir, room.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing room %s: %w", room.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing room %s: %w", room.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing room %s: %w", room.ID, err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("writing room %s: %w", room.ID, err)
	}
	return nil
}

func (f *File) Create(ctx context.Context, room *game.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.path(room.ID)
	if err != nil {
		return fmt.Errorf("invalid room id %q", room.ID)
	}
	if _, err := os.Stat(p); err == nil {
		return game.ErrRoomExists
	}

	room.Version = 1
	if err := f.write(room); err != nil {
		room.Version = 0
		return err
	}
	return nil
}

func (f *File) Load(ctx context.Context, id string) (*game.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.read(id)
}

func (f *File) Save(ctx context.Context, room *game.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read(room.ID)
	if err != nil {
		return err
	}
	if current.Version != room.Version {
		return game.ErrVersionConflict
	}

	room.Version++
	if err := f.write(room); err != nil {
		room.Version--
		return err
	}
	return nil
}

func (f *File) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.path(id)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return game.ErrRoomNotFound
	}
	return err
}

func (f *File) Reap(ctx context.Context, before time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("listing rooms: %w", err)
	}

	n := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		id, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || entry.IsDir() {
			continue
		}

		room, err := f.read(id)
		if err != nil || !room.UpdatedAt.Before(before) {
			continue
		}

		if err := os.Remove(filepath.Join(f.dir, entry.Name())); err != nil {
			return n, fmt.Errorf("removing room %s: %w", id, err)
		}
		n++
	}
	return n, nil
}
