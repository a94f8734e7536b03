// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package recommend

import (
	"context"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// Per-step bounds keeping the co-viewing walk cheap. The touched-item cap is
// configured; these cap the fan-out per hop.
const (
	covisitViewersPerItem   = 50
	covisitEntriesPerViewer = 40
)

// CovisitGenerator recommends items that other viewers of the user's own
// items also watched.
type CovisitGenerator struct {
	history   *store.HistoryStore
	favorites *store.FavoriteStore
	lookupCap int
	divisor   float64
	logger    zerolog.Logger
}

// NewCovisitGenerator creates a collaborative generator. The lookup walks at
// most lookupCap of the user's touched items; co-occurrence counts normalize
// as min(count/divisor, 1).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCovisitGenerator(history *store.HistoryStore, favorites *store.FavoriteStore, lookupCap int, divisor float64, logger zerolog.Logger) *CovisitGenerator {
	return &CovisitGenerator{
		history:   history,
		favorites: favorites,
		lookupCap: lookupCap,
		divisor:   divisor,
		logger:    logger.With().Str("generator", "covisit").Logger(),
	}
}

// Name implements Generator.
func (g *CovisitGenerator) Name() string { return "covisit" }

// Generate finds other users who viewed the requesting user's touched items
// and counts what else those users watched.
func (g *CovisitGenerator) Generate(ctx context.Context, userID string, exclude map[string]struct{}, count int) ([]models.RecommendationItem, error) {
	if count <= 0 {
		return nil, nil
	}

	touched, err := g.touchedItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(touched) == 0 {
		return nil, nil
	}

	coViewers := make(map[string]struct{})
	for _, itemID := range touched {
		entries, byErr := g.history.ByItem(ctx, itemID, covisitViewersPerItem)
		if byErr != nil {
			return nil, byErr
		}
		for i := range entries {
			if entries[i].UserID != userID {
				coViewers[entries[i].UserID] = struct{}{}
			}
		}
	}

	coCounts := make(map[string]int)
	snapshots := make(map[string]*models.ViewHistoryEntry)
	for viewer := range coViewers {
		entries, recErr := g.history.RecentByUser(ctx, viewer, covisitEntriesPerViewer)
		if recErr != nil {
			return nil, recErr
		}
		seen := make(map[string]struct{})
		for i := range entries {
			entry := &entries[i]
			if _, excluded := exclude[entry.ItemID]; excluded {
				continue
			}
			// Count each viewer once per item.
			if _, dup := seen[entry.ItemID]; dup {
				continue
			}
			seen[entry.ItemID] = struct{}{}
			coCounts[entry.ItemID]++
			if _, ok := snapshots[entry.ItemID]; !ok {
				snapshots[entry.ItemID] = entry
			}
		}
	}

	items := make([]models.RecommendationItem, 0, len(coCounts))
	for itemID, n := range coCounts {
		entry := snapshots[itemID]
		items = append(items, models.RecommendationItem{
			ItemID:   itemID,
			Type:     entry.Type,
			Snapshot: entry.Snapshot,
			Score:    clampScore(float64(n) / g.divisor),
			Reason:   models.ReasonRecommended,
			Metadata: map[string]string{"co_viewers": strconv.Itoa(n)},
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

	g.logger.Debug().Str("user_id", userID).Int("candidates", len(items)).Msg("covisit pass complete")
	return items, nil
}

// touchedItems returns up to lookupCap item IDs from the user's history and
// favorites, history first.
func (g *CovisitGenerator) touchedItems(ctx context.Context, userID string) ([]string, error) {
	ids, err := g.history.RecentItemIDs(ctx, userID, g.lookupCap)
	if err != nil {
		return nil, err
	}
	if len(ids) >= g.lookupCap {
		return ids[:g.lookupCap], nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	favIDs, err := g.favorites.ItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range favIDs {
		if len(ids) >= g.lookupCap {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
