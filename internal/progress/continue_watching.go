// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package progress

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// ContinueWatching joins in-progress records with live catalog metadata.
type ContinueWatching struct {
	store         *store.ProgressStore
	catalog       catalog.Catalog
	lookupTimeout time.Duration
	logger        zerolog.Logger
}

// NewContinueWatching creates the aggregator. lookupTimeout bounds each
// catalog metadata fetch so one slow upstream call cannot stall the rail.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContinueWatching(progressStore *store.ProgressStore, cat catalog.Catalog, lookupTimeout time.Duration, logger zerolog.Logger) *ContinueWatching {
	if lookupTimeout <= 0 {
		lookupTimeout = 2 * time.Second
	}
	return &ContinueWatching{
		store:         progressStore,
		catalog:       cat,
		lookupTimeout: lookupTimeout,
		logger:        logger.With().Str("component", "continue_watching").Logger(),
	}
}

// List returns up to limit in-progress, not-completed videos, most recently
// updated first. Items whose catalog metadata has vanished are dropped.
// If the catalog is unreachable the rail degrades to the stored snapshot
// fields rather than failing the request.
func (c *ContinueWatching) List(ctx context.Context, userID string, limit int) ([]models.ContinueWatchingItem, error) {
	records, err := c.store.ListInProgress(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.ContinueWatchingItem, 0, len(records))
	for i := range records {
		rec := &records[i]

		snapshot, ok := c.lookup(ctx, rec.VideoID)
		if !ok {
			continue
		}

		items = append(items, models.ContinueWatchingItem{
			ItemID:              rec.VideoID,
			Snapshot:            snapshot,
			WatchedSeconds:      rec.WatchedSeconds,
			TotalSeconds:        rec.TotalSeconds,
			LastPositionSeconds: rec.LastPositionSeconds,
			ProgressFraction:    rec.ProgressFraction(),
			UpdatedAt:           rec.UpdatedAt,
		})
	}
	return items, nil
}

// lookup fetches the item's metadata with a bounded timeout. A missing item
// returns ok=false; an unavailable catalog returns a minimal snapshot so the
// rail still renders.
func (c *ContinueWatching) lookup(ctx context.Context, itemID string) (models.ContentSummary, bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	snapshot, err := c.catalog.GetByID(lookupCtx, itemID)
	switch {
	case err == nil:
		return snapshot, true
	case errors.Is(err, catalog.ErrItemNotFound):
		c.logger.Debug().Str("item_id", itemID).Msg("item removed from catalog, dropping from rail")
		return models.ContentSummary{}, false
	default:
		c.logger.Warn().Err(err).Str("item_id", itemID).Msg("catalog lookup failed, degrading")
		return models.ContentSummary{
			ID:   itemID,
			Type: models.ContentTypeVideo,
		}, true
	}
}
