// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package progress

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/metrics"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// Promoter auto-favorites content a user has watched past a threshold
// fraction of its runtime. It consumes history events off the bus so the
// history write path never blocks on favorites.
type Promoter struct {
	favorites *store.FavoriteStore
	bus       *events.Bus
	metrics   *metrics.Metrics
	threshold float64
	logger    zerolog.Logger
}

// NewPromoter creates a promoter. threshold is the watched fraction past
// which a view promotes its item to favorites (typically 0.5).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPromoter(favorites *store.FavoriteStore, bus *events.Bus, m *metrics.Metrics, threshold float64, logger zerolog.Logger) *Promoter {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	return &Promoter{
		favorites: favorites,
		bus:       bus,
		metrics:   m,
		threshold: threshold,
		logger:    logger.With().Str("component", "promoter").Logger(),
	}
}

// Run subscribes to history events and promotes qualifying views until ctx
// is canceled. It blocks; callers run it in its own goroutine.
func (p *Promoter) Run(ctx context.Context) error {
	messages, err := p.bus.Subscribe(ctx, events.TopicHistoryRecorded)
	if err != nil {
		return err
	}

	for msg := range messages {
		var payload events.HistoryRecorded
		if err := events.Decode(msg, &payload); err != nil {
			p.logger.Warn().Err(err).Msg("skipping malformed history event")
			msg.Ack()
			continue
		}
		p.consider(ctx, &payload.Entry)
		msg.Ack()
	}
	return nil
}

// consider promotes the entry's item when the watched fraction exceeds the
// threshold. Already-favorited items are left alone.
func (p *Promoter) consider(ctx context.Context, entry *models.ViewHistoryEntry) {
	total := entry.Snapshot.DurationSeconds
	if total <= 0 {
		return
	}
	if float64(entry.WatchDurationSeconds)/float64(total) <= p.threshold {
		return
	}

	_, err := p.favorites.Add(ctx, entry.UserID, entry.Type, entry.ItemID, entry.Snapshot)
	switch {
	case err == nil:
		p.metrics.AutoFavoritesTotal.Inc()
		p.logger.Info().
			Str("user_id", entry.UserID).
			Str("item_id", entry.ItemID).
			Msg("auto-favorited after sustained watch")
		if pubErr := p.bus.Publish(events.TopicFavoritesChanged, events.FavoritesChanged{
			UserID: entry.UserID,
			ItemID: entry.ItemID,
			Added:  true,
		}); pubErr != nil {
			p.logger.Warn().Err(pubErr).Msg("publish favorites event")
		}
	case errors.Is(err, store.ErrAlreadyFavorited):
		// Manual favorite beat us to it.
	default:
		p.logger.Warn().Err(err).
			Str("user_id", entry.UserID).
			Str("item_id", entry.ItemID).
			Msg("auto-favorite failed")
	}
}
