/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Satyasatyam rooms over HTTP
//
// Routes, all under $prefix/api/rooms:
//   - POST /                  create a room, the caller takes the first seat
//   - GET  /:room             the caller's view of the room (?role=viewer to watch)
//   - POST /:room/join        claim a seat, or become a viewer when none is free
//   - POST /:room/sentences   hand in three sentences
//   - POST /:room/guess       guess the role of every seat
//   - POST /:room/reveal      score the round and show results
//   - POST /:room/round       deal new roles and start writing again
//   - POST /:room/quit        leave the room
//   - POST /:room/end         end the game (host only)
//   - GET  /:room/links       player and viewer share links
//   - GET  /:room/qr          PNG QR code for a share link
//   - GET  /:room/ws          websocket pushing the view whenever it changes
//
// Callers are identified by a long-lived cookie holding a UUID.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/satyasatyam/game"
)

const (
	playerCookieName = "satyasatyam_id"
	maxBodyBytes     = 16 << 10
	qrSize           = 320

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type createRequest struct {
	RequireNames bool   `json:"require_names"`
	Name         string `json:"name"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type sentencesRequest struct {
	Sentences []string `json:"sentences"`
}

type guessRequest struct {
	Roles map[game.Slot]game.Role `json:"roles"`
}

type shareLinks struct {
	Room     string `json:"room"`
	Player   string `json:"player"`
	Viewer   string `json:"viewer"`
	PlayerQR string `json:"player_qr"`
	ViewerQR string `json:"viewer_qr"`
}

type createResponse struct {
	View  game.View  `json:"view"`
	Links shareLinks `json:"links"`
}

type joinResponse struct {
	game.Resolution
	View game.View `json:"view"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	// Later handlers in the same request see the fresh id.
	r.AddCookie(&http.Cookie{Name: playerCookieName, Value: id})

	return id
}

func sessionFor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) game.Session {
	return game.Session{
		RoomID: game.NormalizeRoomID(ps.ByName("room")),
		UserID: getOrSetPlayerID(w, r),
		Viewer: r.URL.Query().Get("role") == "viewer",
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

// RoomManager carries everything the room handlers share.
type RoomManager struct {
	svc          *game.Service
	log          zerolog.Logger
	metrics      *metrics
	limits       *limiter
	idleTimeout  time.Duration
	pollInterval time.Duration
	done         <-chan struct{}
}

func newRoomManager(cfg *Config, svc *game.Service, log zerolog.Logger, m *metrics, done <-chan struct{}) *RoomManager {
	return &RoomManager{
		svc:          svc,
		log:          log,
		metrics:      m,
		limits:       newLimiter(cfg.rateLimit, cfg.rateBurst),
		idleTimeout:  cfg.sessionTimeout,
		pollInterval: cfg.pollInterval,
		done:         done,
	}
}

// reaperLoop periodically deletes rooms that have been idle longer than idleTimeout.
func (rm *RoomManager) reaperLoop(ctx context.Context) {
	if rm.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(rm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rm.reap(ctx, now)
		}
	}
}

func (rm *RoomManager) reap(ctx context.Context, now time.Time) {
	cutoff := now.Add(-rm.idleTimeout)

	if _, err := rm.svc.Reap(ctx, cutoff); err != nil {
		rm.log.Error().Err(err).Msg("reaping idle rooms")
	}

	rm.limits.sweep(cutoff)
}

func (rm *RoomManager) links(cfg *Config, r *http.Request, roomID string) shareLinks {
	base := cfg.baseURL
	if base == "" {
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	base = strings.TrimSuffix(base, "/") + cfg.prefix

	player := base + "/?id=" + url.QueryEscape(roomID)
	qr := base + "/api/rooms/" + url.PathEscape(roomID) + "/qr"

	return shareLinks{
		Room:     roomID,
		Player:   player,
		Viewer:   player + "&role=viewer",
		PlayerQR: qr,
		ViewerQR: qr + "?role=viewer",
	}
}

type actionFunc func(ctx context.Context, sess game.Session, w http.ResponseWriter, r *http.Request) (any, error)

// serveAction runs fn for one request and writes its result or error as JSON.
// Mutating requests are rate limited per user.
func serveAction(cfg *Config, rm *RoomManager, name string, status int, errs chan<- error, fn actionFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		sess := sessionFor(w, r, ps)

		var (
			body any
			err  error
		)
		if r.Method != http.MethodGet && !rm.limits.allow(sess.UserID) {
			err = errRateLimited
		} else {
			body, err = fn(r.Context(), sess, w, r)
		}

		rm.metrics.observe(name, err)

		if err != nil {
			ev := rm.log.Debug()
			if statusFor(err) >= http.StatusInternalServerError {
				ev = rm.log.Error()
			}
			ev.Err(err).
				Str("action", name).
				Str("room", sess.RoomID).
				Str("ip", realIP(r)).
				Msg("action failed")

			if werr := writeError(cfg, w, err); werr != nil {
				errs <- werr
			}

			return
		}

		if werr := writeJSON(cfg, w, status, body); werr != nil {
			errs <- werr

			return
		}

		rm.log.Debug().
			Str("action", name).
			Str("room", sess.RoomID).
			Str("ip", realIP(r)).
			Dur("took", time.Since(startTime).Round(time.Microsecond)).
			Msg("action served")
	}
}

func createRoom(cfg *Config, rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, w http.ResponseWriter, r *http.Request) (any, error) {
		var req createRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}

		v, err := rm.svc.CreateRoom(ctx, sess.UserID, game.Settings{RequireNames: req.RequireNames}, req.Name)
		if err != nil {
			return nil, err
		}

		return createResponse{View: v, Links: rm.links(cfg, r, v.RoomID)}, nil
	}
}

func viewRoom(rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, _ http.ResponseWriter, _ *http.Request) (any, error) {
		return rm.svc.View(ctx, sess)
	}
}

func joinRoom(rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, w http.ResponseWriter, r *http.Request) (any, error) {
		var req joinRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}

		res, v, err := rm.svc.Join(ctx, sess, req.Name)
		if err != nil {
			return nil, err
		}

		return joinResponse{Resolution: res, View: v}, nil
	}
}

func submitSentences(rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, w http.ResponseWriter, r *http.Request) (any, error) {
		var req sentencesRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}

		return rm.svc.SubmitSentences(ctx, sess, req.Sentences)
	}
}

func submitGuess(rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, w http.ResponseWriter, r *http.Request) (any, error) {
		var req guessRequest
		if err := decodeBody(w, r, &req); err != nil {
			return nil, err
		}

		return rm.svc.SubmitGuess(ctx, sess, req.Roles)
	}
}

// simpleAction adapts a body-less service call.
func simpleAction(fn func(context.Context, game.Session) (game.View, error)) actionFunc {
	return func(ctx context.Context, sess game.Session, _ http.ResponseWriter, _ *http.Request) (any, error) {
		return fn(ctx, sess)
	}
}

func roomLinks(cfg *Config, rm *RoomManager) actionFunc {
	return func(ctx context.Context, sess game.Session, _ http.ResponseWriter, r *http.Request) (any, error) {
		if _, err := rm.svc.View(ctx, sess); err != nil {
			return nil, err
		}

		return rm.links(cfg, r, sess.RoomID), nil
	}
}

// serveQR generates a PNG QR code for the player or viewer link of a room.
func serveQR(cfg *Config, rm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sess := sessionFor(w, r, ps)

		_, err := rm.svc.View(r.Context(), sess)
		rm.metrics.observe("qr", err)
		if err != nil {
			if werr := writeError(cfg, w, err); werr != nil {
				errs <- werr
			}

			return
		}

		l := rm.links(cfg, r, sess.RoomID)
		target := l.Player
		if sess.Viewer {
			target = l.Viewer
		}

		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		rm.log.Debug().
			Str("room", sess.RoomID).
			Str("size", humanReadableSize(int64(written))).
			Str("ip", realIP(r)).
			Msg("served qr code")
	}
}

// serveWatch upgrades to a websocket and pushes the caller's view every
// time the room version moves.
func serveWatch(cfg *Config, rm *RoomManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sess := sessionFor(w, r, ps)

		v, err := rm.svc.View(r.Context(), sess)
		rm.metrics.observe("watch", err)
		if err != nil {
			if werr := writeError(cfg, w, err); werr != nil {
				errs <- werr
			}

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			rm.log.Warn().Err(err).Str("ip", realIP(r)).Msg("websocket upgrade failed")

			return
		}

		rm.metrics.watchers.Inc()
		defer rm.metrics.watchers.Dec()

		rm.watch(r.Context(), conn, sess, v)
	}
}

func (rm *RoomManager) watch(ctx context.Context, conn *websocket.Conn, sess game.Session, last game.View) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	// Clients never send anything useful, but reading is how closes and
	// pongs are noticed.
	go func() {
		defer cancel()

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	if err := send(last); err != nil {
		return
	}

	poll := time.NewTicker(rm.pollInterval)
	defer poll.Stop()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rm.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
			v, err := rm.svc.View(ctx, sess)
			switch {
			case errors.Is(err, game.ErrRoomNotFound):
				_ = send(map[string]string{"error": errorMessage(err)})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closed"),
					time.Now().Add(writeWait))
				return
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				rm.log.Warn().Err(err).Str("room", sess.RoomID).Msg("watch poll failed")
				continue
			case v.Version == last.Version:
				continue
			}

			last = v
			if err := send(v); err != nil {
				return
			}
		}
	}
}

func registerRooms(cfg *Config, mux *httprouter.Router, rm *RoomManager, errs chan<- error) {
	path := cfg.prefix + "/api/rooms"

	mux.POST(path, serveAction(cfg, rm, "create", http.StatusCreated, errs, createRoom(cfg, rm)))

	mux.GET(path+"/:room", serveAction(cfg, rm, "view", http.StatusOK, errs, viewRoom(rm)))

	mux.POST(path+"/:room/join", serveAction(cfg, rm, "join", http.StatusOK, errs, joinRoom(rm)))
	mux.POST(path+"/:room/sentences", serveAction(cfg, rm, "sentences", http.StatusOK, errs, submitSentences(rm)))
	mux.POST(path+"/:room/guess", serveAction(cfg, rm, "guess", http.StatusOK, errs, submitGuess(rm)))
	mux.POST(path+"/:room/reveal", serveAction(cfg, rm, "reveal", http.StatusOK, errs, simpleAction(rm.svc.Reveal)))
	mux.POST(path+"/:room/round", serveAction(cfg, rm, "round", http.StatusOK, errs, simpleAction(rm.svc.StartNewRound)))
	mux.POST(path+"/:room/quit", serveAction(cfg, rm, "quit", http.StatusOK, errs, simpleAction(rm.svc.Quit)))
	mux.POST(path+"/:room/end", serveAction(cfg, rm, "end", http.StatusOK, errs, simpleAction(rm.svc.EndGame)))

	mux.GET(path+"/:room/links", serveAction(cfg, rm, "links", http.StatusOK, errs, roomLinks(cfg, rm)))
	mux.GET(path+"/:room/qr", serveQR(cfg, rm, errs))
	mux.GET(path+"/:room/ws", serveWatch(cfg, rm, errs))
}
