// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/maxishida/watchwise/internal/config"
	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/metrics"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// ErrInvalidInteraction rejects an unknown interaction kind.
var ErrInvalidInteraction = errors.New("invalid interaction kind")

// weightedGenerator pairs a generator with its share of the overall limit.
type weightedGenerator struct {
	gen   Generator
	share float64
}

// cacheEntry is one user's cached recommendation list plus the limit it was
// computed for.
type cacheEntry struct {
	list  models.RecommendationList
	limit int
}

// Engine orchestrates the candidate generators and owns the per-user cache.
//
// Generators run concurrently on refresh, each under its own timeout. A
// failing generator contributes nothing; the refresh only reports failure
// when every generator failed, and even then it caches an explicit
// empty-with-reason list instead of returning an error.
type Engine struct {
	cfg          config.RecommendConfig
	history      *store.HistoryStore
	favorites    *store.FavoriteStore
	interactions *store.InteractionStore
	generators   []weightedGenerator
	bus          *events.Bus
	metrics      *metrics.Metrics
	logger       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*cacheEntry

	group singleflight.Group
}

// NewEngine creates an engine with no generators registered.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg config.RecommendConfig, history *store.HistoryStore, favorites *store.FavoriteStore, interactions *store.InteractionStore, bus *events.Bus, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:          cfg,
		history:      history,
		favorites:    favorites,
		interactions: interactions,
		bus:          bus,
		metrics:      m,
		logger:       logger.With().Str("component", "recommend").Logger(),
		cache:        make(map[string]*cacheEntry),
	}
}

// Register appends a generator with its share of the limit. Registration
// order is preserved; merge and rank never depend on it.
func (e *Engine) Register(gen Generator, share float64) {
	e.generators = append(e.generators, weightedGenerator{gen: gen, share: share})
}

// GeneratorNames returns the registered generator names in order.
func (e *Engine) GeneratorNames() []string {
	names := make([]string, len(e.generators))
	for i, wg := range e.generators {
		names[i] = wg.gen.Name()
	}
	return names
}

// Get returns the user's recommendation list. A fresh cached list is served
// directly. A stale one is served immediately, flagged Stale, with a refresh
// kicked off in the background. With no cache at all the refresh runs
// synchronously.
func (e *Engine) Get(ctx context.Context, userID string, limit int) (models.RecommendationList, error) {
	limit = e.clampLimit(limit)

	e.mu.RLock()
	entry, ok := e.cache[userID]
	e.mu.RUnlock()

	if ok && entry.limit >= limit {
		age := time.Since(entry.list.AsOf)
		if age < e.cfg.RefreshInterval {
			e.metrics.RecommendCacheHitsTotal.Inc()
			return truncatedCopy(&entry.list, limit, false), nil
		}

		e.metrics.RecommendStaleServedTotal.Inc()
		stale := truncatedCopy(&entry.list, limit, true)
		go func() {
			if _, err := e.Refresh(context.Background(), userID, limit); err != nil {
				e.logger.Warn().Err(err).Str("user_id", userID).Msg("background refresh failed")
			}
		}()
		return stale, nil
	}

	e.metrics.RecommendCacheMissesTotal.Inc()
	return e.Refresh(ctx, userID, limit)
}

// Refresh recomputes the user's list, replacing any cached copy. Concurrent
// refreshes for the same user collapse into one computation.
func (e *Engine) Refresh(ctx context.Context, userID string, limit int) (models.RecommendationList, error) {
	limit = e.clampLimit(limit)

	result, err, _ := e.group.Do(userID, func() (interface{}, error) {
		return e.refresh(ctx, userID, limit)
	})
	if err != nil {
		return models.RecommendationList{}, err
	}

	list := result.(models.RecommendationList)
	return truncatedCopy(&list, limit, false), nil
}

func (e *Engine) refresh(ctx context.Context, userID string, limit int) (models.RecommendationList, error) {
	refreshCtx, cancel := context.WithTimeout(ctx, e.cfg.RefreshTimeout)
	defer cancel()

	exclude, err := e.exclusionSet(refreshCtx, userID)
	if err != nil {
		return models.RecommendationList{}, fmt.Errorf("build exclusion set: %w", err)
	}

	type contribution struct {
		name  string
		items []models.RecommendationItem
		err   error
	}

	contributions := make([]contribution, len(e.generators))
	var wg sync.WaitGroup
	for i, weighted := range e.generators {
		wg.Add(1)
		go func(idx int, w weightedGenerator) {
			defer wg.Done()
			genCtx, genCancel := context.WithTimeout(refreshCtx, e.cfg.GeneratorTimeout)
			defer genCancel()

			items, genErr := w.gen.Generate(genCtx, userID, exclude, targetCount(limit, w.share))
			contributions[idx] = contribution{name: w.gen.Name(), items: items, err: genErr}
		}(i, weighted)
	}
	wg.Wait()

	var merged []models.RecommendationItem
	var used []string
	failed := 0
	for _, c := range contributions {
		if c.err != nil {
			failed++
			e.metrics.GeneratorFailuresTotal.WithLabelValues(c.name).Inc()
			e.logger.Warn().Err(c.err).Str("generator", c.name).Str("user_id", userID).Msg("generator failed, continuing without it")
			continue
		}
		if len(c.items) > 0 {
			used = append(used, c.name)
		}
		merged = append(merged, c.items...)
	}

	list := models.RecommendationList{
		UserID:         userID,
		Items:          mergeAndRank(merged, limit),
		AsOf:           time.Now(),
		GeneratorsUsed: used,
	}

	switch {
	case len(e.generators) > 0 && failed == len(e.generators):
		list.Reason = "all candidate generators unavailable"
		e.metrics.RecommendRefreshTotal.WithLabelValues("empty").Inc()
	case failed > 0:
		e.metrics.RecommendRefreshTotal.WithLabelValues("partial").Inc()
	default:
		e.metrics.RecommendRefreshTotal.WithLabelValues("ok").Inc()
	}

	e.mu.Lock()
	e.cache[userID] = &cacheEntry{list: list, limit: limit}
	e.mu.Unlock()

	if err := e.bus.Publish(events.TopicRecommendationsRefreshed, events.RecommendationsRefreshed{
		UserID: userID,
		Count:  len(list.Items),
		AsOf:   list.AsOf,
	}); err != nil {
		e.logger.Warn().Err(err).Msg("publish refresh event")
	}
	return list, nil
}

// RecordInteraction appends the reaction to the interaction log. Negative
// kinds (dismiss, not_interested) also drop the item from the cached list
// immediately; the log entry excludes it from all future refreshes.
func (e *Engine) RecordInteraction(ctx context.Context, userID, itemID string, kind models.InteractionKind) (models.Interaction, error) {
	if !kind.Valid() {
		return models.Interaction{}, fmt.Errorf("%w: %q", ErrInvalidInteraction, kind)
	}

	interaction, err := e.interactions.Append(ctx, models.Interaction{
		UserID: userID,
		ItemID: itemID,
		Kind:   kind,
	})
	if err != nil {
		return models.Interaction{}, err
	}
	e.metrics.InteractionsTotal.WithLabelValues(string(kind)).Inc()

	if kind.Negative() {
		e.removeFromCache(userID, itemID)
	}
	return interaction, nil
}

// removeFromCache performs the optimistic local update for negative feedback.
func (e *Engine) removeFromCache(userID, itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.cache[userID]
	if !ok {
		return
	}
	items := entry.list.Items
	for i := range items {
		if items[i].ItemID == itemID {
			entry.list.Items = append(items[:i:i], items[i+1:]...)
			return
		}
	}
}

// Invalidate drops the user's cached list, forcing the next read to refresh.
func (e *Engine) Invalidate(userID string) {
	e.mu.Lock()
	delete(e.cache, userID)
	e.mu.Unlock()
}

// CachedUsers reports how many users currently hold a cached list.
func (e *Engine) CachedUsers() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// exclusionSet unions everything the user has viewed, favorited or reacted
// to. Computed fresh on every refresh.
func (e *Engine) exclusionSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	exclude := make(map[string]struct{})

	viewed, err := e.history.RecentItemIDs(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	for _, id := range viewed {
		exclude[id] = struct{}{}
	}

	favorited, err := e.favorites.ItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range favorited {
		exclude[id] = struct{}{}
	}

	reacted, err := e.interactions.ItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range reacted {
		exclude[id] = struct{}{}
	}
	return exclude, nil
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// mergeAndRank deduplicates by item, keeping the highest-scoring occurrence,
// then sorts descending by score and truncates. Dedup happens before
// truncation so a duplicate never crowds out a distinct candidate.
func mergeAndRank(candidates []models.RecommendationItem, limit int) []models.RecommendationItem {
	best := make(map[string]models.RecommendationItem, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if existing, ok := best[c.ItemID]; ok && existing.Score >= c.Score {
			continue
		}
		best[c.ItemID] = c
	}

	ranked := make([]models.RecommendationItem, 0, len(best))
	for _, c := range best {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// truncatedCopy returns a caller-owned copy of the list bounded to limit.
func truncatedCopy(list *models.RecommendationList, limit int, stale bool) models.RecommendationList {
	out := *list
	out.Stale = stale
	n := len(list.Items)
	if n > limit {
		n = limit
	}
	out.Items = make([]models.RecommendationItem, n)
	copy(out.Items, list.Items[:n])
	return out
}
