/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/satyasatyam/game"
)

func homeBody(cfg *Config, roomID string, viewer bool) string {
	var b strings.Builder

	b.WriteString(`<h1>Satyasatyam</h1>`)
	b.WriteString(`<p>Four players each receive a secret role and write three sentences. `)
	b.WriteString(`Everyone, viewers included, then guesses which role belongs to which seat.</p><ul>`)
	for _, role := range game.Roles {
		b.WriteString("<li><b>" + string(role) + "</b>: " + html.EscapeString(role.Rule()) + "</li>")
	}
	b.WriteString(`</ul>`)

	if roomID != "" {
		as := "a player"
		if viewer {
			as = "a viewer"
		}
		b.WriteString("<p>You are joining room <code>" + html.EscapeString(roomID) + "</code> as " + as + ".</p>")
		b.WriteString("<p>Join with <code>POST " + html.EscapeString(cfg.prefix) + "/api/rooms/" + html.EscapeString(roomID) + "/join</code>.</p>")
	} else {
		b.WriteString("<p>Create a room with <code>POST " + html.EscapeString(cfg.prefix) + "/api/rooms</code>.</p>")
	}

	return b.String()
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_ = getOrSetPlayerID(w, r)

		roomID := game.NormalizeRoomID(r.URL.Query().Get("id"))
		viewer := r.URL.Query().Get("role") == "viewer"

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")

		_, err := io.WriteString(w, newPage("Satyasatyam", homeBody(cfg, roomID, viewer)))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: ` + cfg.prefix + `/api/

User-agent: GPTBot
Disallow: /

User-agent: CCBot
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
