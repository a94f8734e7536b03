// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/metrics"
)

// NewRouter assembles the chi router with the full middleware stack and all
// routes.
func NewRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
		r.Use(httpMetrics(m))

		r.Route("/history", func(r chi.Router) {
			r.Post("/", handler.RecordView)
			r.Get("/", handler.QueryHistory)
			r.Delete("/", handler.ClearHistory)
			r.Post("/extend", handler.ExtendView)
			r.Get("/search", handler.SearchHistory)
			r.Get("/stats", handler.HistoryStats)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Put("/", handler.UpdateProgress)
			r.Get("/", handler.GetProgress)
			r.Post("/reset", handler.ResetProgress)
		})

		r.Get("/continue-watching", handler.ContinueWatching)

		r.Route("/favorites", func(r chi.Router) {
			r.Post("/toggle", handler.ToggleFavorite)
			r.Get("/", handler.ListFavorites)
			r.Get("/check", handler.CheckFavorite)
			r.Get("/count", handler.CountFavorites)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", handler.GetRecommendations)
			r.Post("/refresh", handler.RefreshRecommendations)
			r.Post("/interactions", handler.RecordInteraction)
			r.Get("/status", handler.RecommendationStatus)
		})

		r.Get("/engagement", handler.EngagementScore)
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
