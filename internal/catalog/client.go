// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/models"
)

// Client is the HTTP catalog client. Every request is rate limited and
// guarded by a circuit breaker; all requests carry a bounded timeout so no
// caller blocks indefinitely on the catalog.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]models.ContentSummary]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient creates a catalog client from configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	l := logger.With().Str("component", "catalog").Logger()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]models.ContentSummary](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A 404 is a definitive answer, not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrItemNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	rps := cfg.RequestsPerSecond
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	} else {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
		limiter: limiter,
		logger:  l,
	}
}

// GetByID returns metadata for one item.
func (c *Client) GetByID(ctx context.Context, itemID string) (models.ContentSummary, error) {
	items, err := c.fetch(ctx, "/items/"+url.PathEscape(itemID), true)
	if err != nil {
		return models.ContentSummary{}, err
	}
	if len(items) == 0 {
		return models.ContentSummary{}, ErrItemNotFound
	}
	return items[0], nil
}

// QueryByCategory returns up to limit items in the category.
func (c *Client) QueryByCategory(ctx context.Context, category string, limit int) ([]models.ContentSummary, error) {
	q := url.Values{"category": {category}, "limit": {strconv.Itoa(limit)}}
	return c.fetch(ctx, "/items?"+q.Encode(), false)
}

// QueryByInstructor returns up to limit items by the instructor.
func (c *Client) QueryByInstructor(ctx context.Context, instructor string, limit int) ([]models.ContentSummary, error) {
	q := url.Values{"instructor": {instructor}, "limit": {strconv.Itoa(limit)}}
	return c.fetch(ctx, "/items?"+q.Encode(), false)
}

// fetch performs one breaker-guarded GET. single selects whether the body is
// one object or a list.
func (c *Client) fetch(ctx context.Context, path string, single bool) ([]models.ContentSummary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	items, err := c.breaker.Execute(func() ([]models.ContentSummary, error) {
		return c.doGet(ctx, path, single)
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return nil, err
	}
	return items, nil
}

// doGet performs the HTTP request and decodes the response.
func (c *Client) doGet(ctx context.Context, path string, single bool) ([]models.ContentSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrItemNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if single {
		var item models.ContentSummary
		if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
			return nil, fmt.Errorf("%w: decode: %s", ErrUnavailable, err)
		}
		return []models.ContentSummary{item}, nil
	}

	var items []models.ContentSummary
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: decode: %s", ErrUnavailable, err)
	}
	return items, nil
}
