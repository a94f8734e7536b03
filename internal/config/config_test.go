// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package config

import (
	"testing"
	"time"

	"github.com/maxishida/watchwise/internal/validation"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if verr := validation.ValidateStruct(cfg); verr != nil {
		t.Errorf("default config fails tag validation: %v", verr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails cross-field validation: %v", err)
	}
}

func TestValidateCrossFieldConstraints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "page_size_cap_below_default",
			mutate: func(c *Config) { c.Tracking.MaxPageSize = c.Tracking.DefaultPageSize - 1 },
		},
		{
			name:   "limit_cap_below_default",
			mutate: func(c *Config) { c.Recommend.MaxLimit = c.Recommend.DefaultLimit - 1 },
		},
		{
			name:   "zero_refresh_timeout",
			mutate: func(c *Config) { c.Recommend.RefreshTimeout = 0 },
		},
		{
			name: "generator_timeout_exceeds_refresh",
			mutate: func(c *Config) {
				c.Recommend.GeneratorTimeout = c.Recommend.RefreshTimeout + time.Second
			},
		},
		{
			name: "zero_generator_shares",
			mutate: func(c *Config) {
				c.Recommend.TrendingShare = 0
				c.Recommend.ContentShare = 0
				c.Recommend.CollabShare = 0
			},
		},
		{
			name: "missing_storage_dir",
			mutate: func(c *Config) {
				c.Storage.Dir = ""
				c.Storage.InMemory = false
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestValidateAllowsInMemoryWithoutDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = ""
	cfg.Storage.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("in-memory storage must not require a dir: %v", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WATCHWISE_SERVER_LISTEN_ADDR", "server.listen_addr"},
		{"WATCHWISE_RECOMMEND_REFRESH_INTERVAL", "recommend.refresh_interval"},
		{"WATCHWISE_TRACKING_COMPLETION_THRESHOLD", "tracking.completion_threshold"},
		{"WATCHWISE_STORAGE_DIR", "storage.dir"},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("WATCHWISE_SERVER_LISTEN_ADDR", ":9999")
	t.Setenv("WATCHWISE_STORAGE_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q, want :9999", cfg.Server.ListenAddr)
	}
	// Untouched sections keep their defaults.
	if cfg.Recommend.DefaultLimit != Default().Recommend.DefaultLimit {
		t.Errorf("default limit = %d, want %d", cfg.Recommend.DefaultLimit, Default().Recommend.DefaultLimit)
	}
}
