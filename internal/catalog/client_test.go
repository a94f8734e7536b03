// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.CatalogConfig{
		BaseURL:            srv.URL,
		Timeout:            2 * time.Second,
		BreakerMaxFailures: 3,
		BreakerCooldown:    time.Minute,
	}, zerolog.Nop())
}

func TestGetByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/video-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ContentSummary{
			ID:    "video-1",
			Type:  models.ContentTypeVideo,
			Title: "Intro to Raft",
		})
	})

	item, err := client.GetByID(context.Background(), "video-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.ID != "video-1" || item.Title != "Intro to Raft" {
		t.Errorf("item = %+v", item)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := client.GetByID(context.Background(), "missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("got %v, want ErrItemNotFound", err)
	}
}

func TestQueryByCategory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "systems" {
			t.Errorf("category = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.ContentSummary{
			{ID: "video-1", Type: models.ContentTypeVideo, Category: "systems"},
			{ID: "video-2", Type: models.ContentTypeVideo, Category: "systems"},
		})
	})

	items, err := client.QueryByCategory(context.Background(), "systems", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}

func TestServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.GetByID(context.Background(), "video-1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.GetByID(ctx, "video-1"); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: got %v, want ErrUnavailable", i, err)
		}
	}

	// Breaker is open now; the upstream must not be hit again.
	if _, err := client.GetByID(ctx, "video-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("open breaker: got %v, want ErrUnavailable", err)
	}
	if hits != 3 {
		t.Errorf("upstream hit %d times, want 3", hits)
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var hits int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := client.GetByID(ctx, "missing"); !errors.Is(err, ErrItemNotFound) {
			t.Fatalf("call %d: got %v, want ErrItemNotFound", i, err)
		}
	}
	if hits != 10 {
		t.Errorf("upstream hit %d times, want 10 (404s must not open the breaker)", hits)
	}
}

func TestRequestTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := client.GetByID(ctx, "video-1"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable on timeout", err)
	}
}
