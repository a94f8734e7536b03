// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package recommend

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// trendingScanCap bounds how many recent history entries one trending pass
// reads. The window cutoff usually stops iteration well before this.
const trendingScanCap = 10000

// TrendingGenerator surfaces items viewed often across all users inside the
// lookback window.
type TrendingGenerator struct {
	history    *store.HistoryStore
	windowDays int
	divisor    float64
	logger     zerolog.Logger
}

// NewTrendingGenerator creates a trending generator. Counts normalize as
// min(count/divisor, 1).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrendingGenerator(history *store.HistoryStore, windowDays int, divisor float64, logger zerolog.Logger) *TrendingGenerator {
	return &TrendingGenerator{
		history:    history,
		windowDays: windowDays,
		divisor:    divisor,
		logger:     logger.With().Str("generator", "trending").Logger(),
	}
}

// Name implements Generator.
func (g *TrendingGenerator) Name() string { return "trending" }

// Generate counts per-item views across all users within the window and
// returns the top candidates by count.
func (g *TrendingGenerator) Generate(ctx context.Context, userID string, exclude map[string]struct{}, count int) ([]models.RecommendationItem, error) {
	if count <= 0 {
		return nil, nil
	}

	since := time.Now().AddDate(0, 0, -g.windowDays)
	entries, err := g.history.Recent(ctx, since, trendingScanCap)
	if err != nil {
		return nil, err
	}

	views := make(map[string]int)
	snapshots := make(map[string]*models.ViewHistoryEntry)
	for i := range entries {
		entry := &entries[i]
		if _, excluded := exclude[entry.ItemID]; excluded {
			continue
		}
		views[entry.ItemID]++
		if _, ok := snapshots[entry.ItemID]; !ok {
			snapshots[entry.ItemID] = entry
		}
	}

	items := make([]models.RecommendationItem, 0, len(views))
	for itemID, n := range views {
		entry := snapshots[itemID]
		items = append(items, models.RecommendationItem{
			ItemID:   itemID,
			Type:     entry.Type,
			Snapshot: entry.Snapshot,
			Score:    clampScore(float64(n) / g.divisor),
			Reason:   models.ReasonTrending,
			Metadata: map[string]string{"views": strconv.Itoa(n)},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
	if len(items) > count {
		items = items[:count]
	}

	g.logger.Debug().Str("user_id", userID).Int("candidates", len(items)).Msg("trending pass complete")
	return items, nil
}
