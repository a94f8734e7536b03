// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package config loads and validates application configuration.
//
// Configuration is merged in priority order: struct defaults, then an
// optional YAML file, then WATCHWISE_-prefixed environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server"`
	Logging   LoggingConfig   `koanf:"logging" json:"logging"`
	Storage   StorageConfig   `koanf:"storage" json:"storage"`
	Catalog   CatalogConfig   `koanf:"catalog" json:"catalog"`
	Tracking  TrackingConfig  `koanf:"tracking" json:"tracking"`
	Recommend RecommendConfig `koanf:"recommend" json:"recommend"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `koanf:"listen_addr" json:"listen_addr" validate:"required"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`

	// RequestTimeout bounds each request's handler execution.
	RequestTimeout time.Duration `koanf:"request_timeout" json:"request_timeout"`

	// RateLimit is the per-IP request limit per minute.
	RateLimit int `koanf:"rate_limit" json:"rate_limit" validate:"min=1"`

	// CORSAllowedOrigins lists allowed origins for browser clients.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" json:"cors_allowed_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" json:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller" json:"caller"`
}

// StorageConfig configures the Badger key-value store.
type StorageConfig struct {
	// Dir is the on-disk data directory. Ignored when InMemory is set.
	Dir string `koanf:"dir" json:"dir"`

	// InMemory runs Badger without persistence. Intended for tests and
	// local development.
	InMemory bool `koanf:"in_memory" json:"in_memory"`
}

// CatalogConfig configures the content catalog client.
type CatalogConfig struct {
	// BaseURL is the catalog service root, e.g. "http://catalog:8080".
	BaseURL string `koanf:"base_url" json:"base_url" validate:"required,url"`

	// Timeout bounds each catalog request. Timed-out reads feeding the
	// recommendation engine degrade to "no data from this source".
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// RequestsPerSecond limits outbound catalog traffic.
	RequestsPerSecond float64 `koanf:"requests_per_second" json:"requests_per_second" validate:"min=0"`

	// BreakerMaxFailures is the consecutive failure count that opens the
	// circuit breaker.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures" json:"breaker_max_failures"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown" json:"breaker_cooldown"`
}

// TrackingConfig configures progress and history behavior.
type TrackingConfig struct {
	// CompletionThreshold is the watched fraction that marks a video
	// completed. Injectable, never hard-coded per call site.
	CompletionThreshold float64 `koanf:"completion_threshold" json:"completion_threshold" validate:"gt=0,lte=1"`

	// AutoFavoriteThreshold is the watch-ratio above which a recorded view
	// promotes the item into favorites.
	AutoFavoriteThreshold float64 `koanf:"auto_favorite_threshold" json:"auto_favorite_threshold" validate:"gt=0,lte=1"`

	// DefaultPageSize is the history page size when the caller omits one.
	DefaultPageSize int `koanf:"default_page_size" json:"default_page_size" validate:"min=1"`

	// MaxPageSize caps the history page size.
	MaxPageSize int `koanf:"max_page_size" json:"max_page_size" validate:"min=1"`

	// StoreTimeout bounds individual store operations.
	StoreTimeout time.Duration `koanf:"store_timeout" json:"store_timeout"`
}

// RecommendConfig configures the recommendation engine.
//
// The generator constants (divisors, caps) mirror the observed behavior of
// the heuristics in production; they are knobs rather than hard-coded values
// because no documented rationale pins them to these exact numbers.
type RecommendConfig struct {
	// RefreshInterval is the staleness window for cached lists.
	RefreshInterval time.Duration `koanf:"refresh_interval" json:"refresh_interval"`

	// RefreshTimeout is the overall budget for one refresh.
	RefreshTimeout time.Duration `koanf:"refresh_timeout" json:"refresh_timeout"`

	// GeneratorTimeout bounds each candidate generator individually.
	GeneratorTimeout time.Duration `koanf:"generator_timeout" json:"generator_timeout"`

	// DefaultLimit is the list size when the caller omits one.
	DefaultLimit int `koanf:"default_limit" json:"default_limit" validate:"min=1"`

	// MaxLimit caps the requested list size.
	MaxLimit int `koanf:"max_limit" json:"max_limit" validate:"min=1"`

	// TrendingShare, ContentShare and CollabShare apportion the limit
	// across generators (floor(limit*share) per generator).
	TrendingShare float64 `koanf:"trending_share" json:"trending_share" validate:"min=0,max=1"`
	ContentShare  float64 `koanf:"content_share" json:"content_share" validate:"min=0,max=1"`
	CollabShare   float64 `koanf:"collab_share" json:"collab_share" validate:"min=0,max=1"`

	// TrendingWindowDays is the lookback for the trending generator.
	TrendingWindowDays int `koanf:"trending_window_days" json:"trending_window_days" validate:"min=1"`

	// TrendingDivisor normalizes trending counts: score = min(count/div, 1).
	TrendingDivisor float64 `koanf:"trending_divisor" json:"trending_divisor" validate:"gt=0"`

	// TopCategories / TopInstructors bound the content-based profile.
	TopCategories  int `koanf:"top_categories" json:"top_categories" validate:"min=1"`
	TopInstructors int `koanf:"top_instructors" json:"top_instructors" validate:"min=1"`

	// PerCategory / PerInstructor cap catalog lookups per profile entry.
	PerCategory   int `koanf:"per_category" json:"per_category" validate:"min=1"`
	PerInstructor int `koanf:"per_instructor" json:"per_instructor" validate:"min=1"`

	// CategoryDivisor / InstructorDivisor normalize content-based scores.
	CategoryDivisor   float64 `koanf:"category_divisor" json:"category_divisor" validate:"gt=0"`
	InstructorDivisor float64 `koanf:"instructor_divisor" json:"instructor_divisor" validate:"gt=0"`

	// ContentHistoryLimit / ContentFavoritesLimit bound the profile inputs.
	ContentHistoryLimit   int `koanf:"content_history_limit" json:"content_history_limit" validate:"min=1"`
	ContentFavoritesLimit int `koanf:"content_favorites_limit" json:"content_favorites_limit" validate:"min=1"`

	// CollabLookupCap bounds the co-viewing lookup to the first N touched
	// items.
	CollabLookupCap int `koanf:"collab_lookup_cap" json:"collab_lookup_cap" validate:"min=1"`

	// CollabDivisor normalizes co-occurrence counts.
	CollabDivisor float64 `koanf:"collab_divisor" json:"collab_divisor" validate:"gt=0"`
}

// Default returns a Config with production defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ":8460",
			ShutdownTimeout:    15 * time.Second,
			RequestTimeout:     30 * time.Second,
			RateLimit:          300,
			CORSAllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Dir: "./data",
		},
		Catalog: CatalogConfig{
			BaseURL:            "http://localhost:8470",
			Timeout:            3 * time.Second,
			RequestsPerSecond:  50,
			BreakerMaxFailures: 5,
			BreakerCooldown:    30 * time.Second,
		},
		Tracking: TrackingConfig{
			CompletionThreshold:   0.9,
			AutoFavoriteThreshold: 0.5,
			DefaultPageSize:       50,
			MaxPageSize:           500,
			StoreTimeout:          5 * time.Second,
		},
		Recommend: RecommendConfig{
			RefreshInterval:       60 * time.Minute,
			RefreshTimeout:        10 * time.Second,
			GeneratorTimeout:      4 * time.Second,
			DefaultLimit:          20,
			MaxLimit:              100,
			TrendingShare:         0.3,
			ContentShare:          0.4,
			CollabShare:           0.3,
			TrendingWindowDays:    7,
			TrendingDivisor:       10,
			TopCategories:         3,
			TopInstructors:        2,
			PerCategory:           5,
			PerInstructor:         3,
			CategoryDivisor:       5,
			InstructorDivisor:     3,
			ContentHistoryLimit:   50,
			ContentFavoritesLimit: 20,
			CollabLookupCap:       10,
			CollabDivisor:         5,
		},
	}
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Tracking.MaxPageSize < c.Tracking.DefaultPageSize {
		return fmt.Errorf("tracking.max_page_size must be >= tracking.default_page_size, got %d < %d",
			c.Tracking.MaxPageSize, c.Tracking.DefaultPageSize)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("recommend.max_limit must be >= recommend.default_limit, got %d < %d",
			c.Recommend.MaxLimit, c.Recommend.DefaultLimit)
	}
	if c.Recommend.RefreshTimeout <= 0 {
		return fmt.Errorf("recommend.refresh_timeout must be positive, got %v", c.Recommend.RefreshTimeout)
	}
	if c.Recommend.GeneratorTimeout > c.Recommend.RefreshTimeout {
		return fmt.Errorf("recommend.generator_timeout must not exceed recommend.refresh_timeout, got %v > %v",
			c.Recommend.GeneratorTimeout, c.Recommend.RefreshTimeout)
	}
	shares := c.Recommend.TrendingShare + c.Recommend.ContentShare + c.Recommend.CollabShare
	if shares <= 0 {
		return fmt.Errorf("recommend generator shares must sum to a positive value, got %f", shares)
	}
	if !c.Storage.InMemory && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required unless storage.in_memory is set")
	}
	return nil
}
