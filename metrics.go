/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Seednode/satyasatyam/game"
)

type metrics struct {
	registry  *prometheus.Registry
	actions   *prometheus.CounterVec
	conflicts prometheus.Counter
	created   prometheus.Counter
	reaped    prometheus.Counter
	watchers  prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "satyasatyam_actions_total",
			Help: "Room actions handled, by action and result.",
		}, []string{"action", "result"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satyasatyam_store_conflicts_total",
			Help: "Saves rejected because another writer updated the room first.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satyasatyam_rooms_created_total",
			Help: "Rooms created.",
		}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satyasatyam_rooms_reaped_total",
			Help: "Idle rooms deleted by the reaper.",
		}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "satyasatyam_watchers",
			Help: "Open websocket connections watching a room.",
		}),
	}

	m.registry.MustRegister(m.actions, m.conflicts, m.created, m.reaped, m.watchers)

	return m
}

func (m *metrics) observe(action string, err error) {
	m.actions.WithLabelValues(action, errorKind(err)).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// countingStore records store outcomes on the way through to the real store.
type countingStore struct {
	game.Store
	m *metrics
}

func instrument(s game.Store, m *metrics) game.Store {
	return &countingStore{Store: s, m: m}
}

func (s *countingStore) Create(ctx context.Context, r *game.Room) error {
	err := s.Store.Create(ctx, r)
	if err == nil {
		s.m.created.Inc()
	}
	return err
}

func (s *countingStore) Save(ctx context.Context, r *game.Room) error {
	err := s.Store.Save(ctx, r)
	if errors.Is(err, game.ErrVersionConflict) {
		s.m.conflicts.Inc()
	}
	return err
}

// Reap forwards to the wrapped store so the service still sees a Reaper.
func (s *countingStore) Reap(ctx context.Context, before time.Time) (int, error) {
	r, ok := s.Store.(game.Reaper)
	if !ok {
		return 0, nil
	}

	n, err := r.Reap(ctx, before)
	if err == nil {
		s.m.reaped.Add(float64(n))
	}
	return n, err
}
