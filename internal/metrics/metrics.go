// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package metrics registers and serves Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors on a dedicated
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RecommendRefreshTotal     *prometheus.CounterVec
	GeneratorFailuresTotal    *prometheus.CounterVec
	RecommendCacheHitsTotal   prometheus.Counter
	RecommendCacheMissesTotal prometheus.Counter
	RecommendStaleServedTotal prometheus.Counter

	HistoryAppendsTotal prometheus.Counter
	AutoFavoritesTotal  prometheus.Counter
	CompletionsTotal    prometheus.Counter
	InteractionsTotal   *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchwise_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "watchwise_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		RecommendRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchwise_recommend_refresh_total",
			Help: "Recommendation refreshes by outcome (ok, partial, empty).",
		}, []string{"outcome"}),

		GeneratorFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchwise_recommend_generator_failures_total",
			Help: "Candidate generator failures by generator name.",
		}, []string{"generator"}),

		RecommendCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_recommend_cache_hits_total",
			Help: "Recommendation reads served from a fresh cache.",
		}),

		RecommendCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_recommend_cache_misses_total",
			Help: "Recommendation reads that triggered a synchronous refresh.",
		}),

		RecommendStaleServedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_recommend_stale_served_total",
			Help: "Recommendation reads served from a stale cache.",
		}),

		HistoryAppendsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_history_appends_total",
			Help: "View history entries recorded.",
		}),

		AutoFavoritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_auto_favorites_total",
			Help: "Favorites inserted by the watch-ratio promoter.",
		}),

		CompletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchwise_progress_completions_total",
			Help: "Progress records that transitioned to completed.",
		}),

		InteractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchwise_recommend_interactions_total",
			Help: "Recorded recommendation interactions by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RecommendRefreshTotal,
		m.GeneratorFailuresTotal,
		m.RecommendCacheHitsTotal,
		m.RecommendCacheMissesTotal,
		m.RecommendStaleServedTotal,
		m.HistoryAppendsTotal,
		m.AutoFavoritesTotal,
		m.CompletionsTotal,
		m.InteractionsTotal,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
