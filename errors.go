/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Seednode/satyasatyam/game"
)

var (
	errBadRequest  = errors.New("malformed request body")
	errRateLimited = errors.New("too many requests, slow down")
)

func newLogger(cfg *Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.WarnLevel
	if cfg.verbose {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: logDate}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// errorKind names an action failure for logs and metrics.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, game.ErrRoomNotFound):
		return "not_found"
	case errors.Is(err, game.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, game.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, game.ErrAlreadyGuessed):
		return "already_guessed"
	case errors.Is(err, game.ErrIncompleteSubmission):
		return "incomplete"
	case errors.Is(err, game.ErrNameRequired):
		return "name_required"
	case errors.Is(err, game.ErrNotHost):
		return "not_host"
	case errors.Is(err, game.ErrNotPlayer):
		return "not_player"
	case errors.Is(err, game.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, game.ErrStoreIO):
		return "store"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func statusFor(err error) int {
	switch errorKind(err) {
	case "not_found":
		return http.StatusNotFound
	case "invalid_transition", "duplicate_name", "already_guessed":
		return http.StatusConflict
	case "incomplete", "name_required", "bad_request":
		return http.StatusBadRequest
	case "not_host", "not_player":
		return http.StatusForbidden
	case "conflict", "store":
		return http.StatusServiceUnavailable
	case "rate_limited":
		return http.StatusTooManyRequests
	case "canceled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides wrapped storage detail from clients.
func errorMessage(err error) string {
	switch errorKind(err) {
	case "conflict":
		return "the room is busy, please try again"
	case "store":
		return game.ErrStoreIO.Error()
	case "internal":
		return "an internal error occurred"
	default:
		return err.Error()
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

func writeError(cfg *Config, w http.ResponseWriter, err error) error {
	return writeJSON(cfg, w, statusFor(err), map[string]string{"error": errorMessage(err)})
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{font-family:sans-serif;max-width:40rem;margin:auto;padding:1rem;}code{background:#eee;padding:0 .2rem;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body>%s</body></html>", body))

	return htmlBody.String()
}
