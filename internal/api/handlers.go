// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package api exposes the engagement core over HTTP: view history, progress,
// favorites, recommendations and the engagement score. Every operation takes
// an explicit user ID; there is no ambient session state.
package api

import (
	"net/http"
	"time"

	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/metrics"
	"github.com/maxishida/watchwise/internal/progress"
	"github.com/maxishida/watchwise/internal/recommend"
	"github.com/maxishida/watchwise/internal/store"
)

// Handler holds the core collaborators behind the HTTP surface.
type Handler struct {
	cfg *config.Config

	history      *store.HistoryStore
	favorites    *store.FavoriteStore
	interactions *store.InteractionStore

	tracker          *progress.Tracker
	continueWatching *progress.ContinueWatching
	engine           *recommend.Engine
	catalog          catalog.Catalog
	bus              *events.Bus
	metrics          *metrics.Metrics

	startedAt time.Time
}

// NewHandler wires a handler.
func NewHandler(cfg *config.Config, history *store.HistoryStore, favorites *store.FavoriteStore, interactions *store.InteractionStore, tracker *progress.Tracker, cw *progress.ContinueWatching, engine *recommend.Engine, cat catalog.Catalog, bus *events.Bus, m *metrics.Metrics) *Handler {
	return &Handler{
		cfg:              cfg,
		history:          history,
		favorites:        favorites,
		interactions:     interactions,
		tracker:          tracker,
		continueWatching: cw,
		engine:           engine,
		catalog:          cat,
		bus:              bus,
		metrics:          m,
		startedAt:        time.Now(),
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady reports readiness to serve traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ready",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}
