/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultSaveRetries = 5
	createAttempts     = 10
)

// errNoChange aborts a mutation without writing to the store.
var errNoChange = errors.New("no change")

// Session is the caller of an action: which room, as which durable user,
// and whether they opened the viewer link.
type Session struct {
	RoomID string
	UserID string
	Viewer bool
}

type Option func(*Service)

func WithPointsPool(pool int) Option {
	return func(s *Service) { s.pool = pool }
}

// WithSaveRetries bounds how often an action is retried after losing a
// version race.
func WithSaveRetries(n int) Option {
	return func(s *Service) { s.retries = n }
}

func WithIntn(intn Intn) Option {
	return func(s *Service) { s.intn = intn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRoomIDs(newID func() (string, error)) Option {
	return func(s *Service) { s.newID = newID }
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// Service applies client actions to rooms. Each action loads the room,
// validates and mutates a copy, derives the next phase and saves it with
// a version check, retrying from a fresh load when another writer won.
type Service struct {
	store   Store
	log     zerolog.Logger
	pool    int
	retries int
	intn    Intn
	now     func() time.Time
	newID   func() (string, error)

	mu    sync.Mutex
	locks map[string]*roomLock
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		log:     zerolog.Nop(),
		pool:    DefaultPointsPool,
		retries: DefaultSaveRetries,
		intn:    CryptoIntn,
		now:     time.Now,
		newID:   NewRoomID,
		locks:   make(map[string]*roomLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock serialises actions on one room inside this process.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &roomLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrRoomExists),
		errors.Is(err, ErrVersionConflict),
		errors.Is(err, ErrStoreIO),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
}

func (s *Service) load(ctx context.Context, id string) (*Room, error) {
	if id == "" {
		return nil, ErrRoomNotFound
	}
	room, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return room, nil
}

// mutate runs fn against a fresh copy of the room until the save wins the
// version race or the retry budget is spent.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Room) error) (*Room, error) {
	unlock := s.lock(id)
	defer unlock()

	for attempt := 0; ; attempt++ {
		room, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		next := room.Clone()
		if err := fn(next); err != nil {
			if errors.Is(err, errNoChange) {
				return room, nil
			}
			return nil, err
		}

		settle(next)
		next.UpdatedAt = s.now()

		if err := next.Validate(); err != nil {
			return nil, fmt.Errorf("room %s would become invalid: %w", id, err)
		}

		err = s.store.Save(ctx, next)
		switch {
		case err == nil:
			if next.Phase != room.Phase {
				s.log.Info().
					Str("room", id).
					Str("from", string(room.Phase)).
					Str("to", string(next.Phase)).
					Msg("phase changed")
			}
			return next, nil
		case errors.Is(err, ErrVersionConflict):
			if attempt >= s.retries {
				return nil, err
			}
			s.log.Debug().Str("room", id).Int("attempt", attempt+1).Msg("version conflict, retrying")
		default:
			return nil, storeErr(err)
		}
	}
}

// CreateRoom opens a new room with the caller as host in the first seat.
func (s *Service) CreateRoom(ctx context.Context, userID string, settings Settings, name string) (View, error) {
	if userID == "" {
		return View{}, ErrNotPlayer
	}

	for range createAttempts {
		id, err := s.newID()
		if err != nil {
			return View{}, fmt.Errorf("generating room id: %w", err)
		}

		now := s.now()
		room := NewRoom(id, settings, userID, Deal(s.intn), now)
		if _, err := join(room, userID, name, false); err != nil {
			return View{}, err
		}

		err = s.store.Create(ctx, room)
		if errors.Is(err, ErrRoomExists) {
			continue
		}
		if err != nil {
			return View{}, storeErr(err)
		}

		s.log.Info().Str("room", id).Str("user", userID).Bool("require_names", settings.RequireNames).Msg("room created")

		return NewView(room, userID), nil
	}

	return View{}, fmt.Errorf("failed to generate unique room id after %d attempts", createAttempts)
}

// View returns the caller's projection of the room. It never writes.
func (s *Service) View(ctx context.Context, sess Session) (View, error) {
	room, err := s.load(ctx, sess.RoomID)
	if err != nil {
		return View{}, err
	}
	return NewView(room, sess.UserID), nil
}

// Join seats the caller, returns their existing seat, or makes them a
// viewer. A full room is not an error: the caller simply watches.
func (s *Service) Join(ctx context.Context, sess Session, name string) (Resolution, View, error) {
	var res Resolution

	room, err := s.mutate(ctx, sess.RoomID, func(r *Room) error {
		var err error
		res, err = join(r, sess.UserID, name, sess.Viewer)
		switch {
		case errors.Is(err, ErrRoomFull):
			res.Full = true
			return errNoChange
		case err != nil:
			return err
		case !res.Claimed:
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return Resolution{}, View{}, err
	}

	if res.Claimed {
		s.log.Info().Str("room", sess.RoomID).Str("user", sess.UserID).Str("slot", string(res.Slot)).Msg("player joined")
	}

	return res, NewView(room, sess.UserID), nil
}

func (s *Service) SubmitSentences(ctx context.Context, sess Session, sentences []string) (View, error) {
	clean, err := CleanSentences(sentences)
	if err != nil {
		return View{}, err
	}

	return s.act(ctx, sess, func(r *Room) error {
		return submitSentences(r, sess.UserID, clean)
	})
}

func (s *Service) SubmitGuess(ctx context.Context, sess Session, roles map[Slot]Role) (View, error) {
	if err := CheckGuess(roles); err != nil {
		return View{}, err
	}

	return s.act(ctx, sess, func(r *Room) error {
		return submitGuess(r, sess.UserID, roles)
	})
}

// Reveal scores the round and shows the results to everyone.
func (s *Service) Reveal(ctx context.Context, sess Session) (View, error) {
	return s.act(ctx, sess, func(r *Room) error {
		return reveal(r, sess.UserID, s.pool)
	})
}

func (s *Service) StartNewRound(ctx context.Context, sess Session) (View, error) {
	return s.act(ctx, sess, func(r *Room) error {
		return startNewRound(r, sess.UserID, s.intn)
	})
}

func (s *Service) Quit(ctx context.Context, sess Session) (View, error) {
	v, err := s.act(ctx, sess, func(r *Room) error {
		return quit(r, sess.UserID)
	})
	if err == nil {
		s.log.Info().Str("room", sess.RoomID).Str("user", sess.UserID).Str("phase", string(v.Phase)).Msg("player quit")
	}
	return v, err
}

func (s *Service) EndGame(ctx context.Context, sess Session) (View, error) {
	v, err := s.act(ctx, sess, func(r *Room) error {
		return endGame(r, sess.UserID)
	})
	if err == nil {
		s.log.Info().Str("room", sess.RoomID).Str("user", sess.UserID).Msg("game ended by host")
	}
	return v, err
}

func (s *Service) act(ctx context.Context, sess Session, fn func(*Room) error) (View, error) {
	room, err := s.mutate(ctx, sess.RoomID, fn)
	if err != nil {
		return View{}, err
	}
	return NewView(room, sess.UserID), nil
}

// Reap deletes rooms untouched since before the cutoff, when the store
// supports it.
func (s *Service) Reap(ctx context.Context, before time.Time) (int, error) {
	r, ok := s.store.(Reaper)
	if !ok {
		return 0, nil
	}

	n, err := r.Reap(ctx, before)
	if err != nil {
		return 0, storeErr(err)
	}
	if n > 0 {
		s.log.Info().Int("rooms", n).Msg("reaped idle rooms")
	}
	return n, nil
}
