// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package progress

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/metrics"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

func newTestPromoter(t *testing.T) (*Promoter, *store.FavoriteStore) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus(zerolog.Nop())
	t.Cleanup(func() { bus.Close() })

	favorites := store.NewFavoriteStore(db, zerolog.Nop())
	return NewPromoter(favorites, bus, metrics.New(), 0.5, zerolog.Nop()), favorites
}

func watchEntry(userID, itemID string, watched, total int) *models.ViewHistoryEntry {
	return &models.ViewHistoryEntry{
		UserID:               userID,
		ItemID:               itemID,
		Type:                 models.ContentTypeVideo,
		WatchDurationSeconds: watched,
		Snapshot: models.ContentSummary{
			ID:              itemID,
			Type:            models.ContentTypeVideo,
			DurationSeconds: total,
		},
	}
}

func TestPromoterAutoFavoritesPastThreshold(t *testing.T) {
	promoter, favorites := newTestPromoter(t)
	ctx := context.Background()

	// 600 of 1000 seconds is past the 0.5 threshold.
	promoter.consider(ctx, watchEntry("u1", "item-x", 600, 1000))

	favorited, err := favorites.IsFavorite(ctx, "u1", "item-x")
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if !favorited {
		t.Error("60% watch did not auto-favorite")
	}

	// A second identical watch event does not duplicate or error.
	promoter.consider(ctx, watchEntry("u1", "item-x", 600, 1000))
	counts, err := favorites.Count(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts.Total != 1 {
		t.Errorf("favorites total = %d after repeat watch, want 1", counts.Total)
	}
}

func TestPromoterIgnoresShortWatches(t *testing.T) {
	promoter, favorites := newTestPromoter(t)
	ctx := context.Background()

	promoter.consider(ctx, watchEntry("u1", "item-short", 400, 1000))
	// Exactly at the threshold does not promote; the ratio must exceed it.
	promoter.consider(ctx, watchEntry("u1", "item-edge", 500, 1000))
	// Unknown runtime cannot be ratioed.
	promoter.consider(ctx, watchEntry("u1", "item-unknown", 600, 0))

	counts, err := favorites.Count(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts.Total != 0 {
		t.Errorf("favorites total = %d, want 0", counts.Total)
	}
}
