/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Seednode/satyasatyam/game"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

// Postgres stores each room as a JSONB document next to its version
// column. Save is a conditional UPDATE on that column, so it is safe
// across any number of server processes.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func dbErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", game.ErrStoreIO, err)
}

func encode(room *game.Room, version int64) ([]byte, error) {
	c := room.Clone()
	c.Version = version
	return json.Marshal(c)
}

func (p *Postgres) Create(ctx context.Context, room *game.Room) error {
	doc, err := encode(room, 1)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.ID, err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO rooms (id, version, document, updated_at) VALUES ($1, 1, $2, $3)`,
		room.ID, doc, room.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return game.ErrRoomExists
		}
		return dbErr(err)
	}

	room.Version = 1
	return nil
}

func (p *Postgres) Load(ctx context.Context, id string) (*game.Room, error) {
	var (
		version int64
		doc     []byte
	)

	err := p.pool.QueryRow(ctx, `SELECT version, document FROM rooms WHERE id = $1`, id).Scan(&version, &doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, game.ErrRoomNotFound
		}
		return nil, dbErr(err)
	}

	var room game.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", id, err)
	}
	room.Version = version

	return &room, nil
}

func (p *Postgres) Save(ctx context.Context, room *game.Room) error {
	doc, err := encode(room, room.Version+1)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.ID, err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE rooms SET version = version + 1, document = $3, updated_at = $4 WHERE id = $1 AND version = $2`,
		room.ID, room.Version, doc, room.UpdatedAt)
	if err != nil {
		return dbErr(err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, room.ID).Scan(&exists)
		switch {
		case err != nil:
			return dbErr(err)
		case !exists:
			return game.ErrRoomNotFound
		default:
			return game.ErrVersionConflict
		}
	}

	room.Version++
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return dbErr(err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrRoomNotFound
	}
	return nil
}

func (p *Postgres) Reap(ctx context.Context, before time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE updated_at < $1`, before)
	if err != nil {
		return 0, dbErr(err)
	}
	return int(tag.RowsAffected()), nil
}
