// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package progress implements the per-(user, video) watch-state machine, the
// continue-watching aggregator, and the auto-favorite promoter.
package progress

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// Tracker upserts watch state and emits a one-time completion event when a
// record transitions to completed.
type Tracker struct {
	store     *store.ProgressStore
	bus       *events.Bus
	threshold float64
	logger    zerolog.Logger
}

// NewTracker creates a tracker. threshold is the watched fraction that marks
// a video completed (typically 0.9); it is injected, never hard-coded per
// call site.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTracker(progressStore *store.ProgressStore, bus *events.Bus, threshold float64, logger zerolog.Logger) *Tracker {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.9
	}
	return &Tracker{
		store:     progressStore,
		bus:       bus,
		threshold: threshold,
		logger:    logger.With().Str("component", "progress").Logger(),
	}
}

// Update upserts the record and recomputes completion.
//
// Writes are idempotent: applying the same (watchedSeconds, positionSeconds)
// twice leaves stored state untouched. Completion is monotonic: a stale
// update arriving after completion never regresses it; only Reset does.
func (t *Tracker) Update(ctx context.Context, userID, videoID string, watchedSeconds, positionSeconds, totalSeconds int) (models.ProgressRecord, error) {
	var completedNow bool

	record, err := t.store.Apply(ctx, userID, videoID, func(current models.ProgressRecord, exists bool) (models.ProgressRecord, bool) {
		next := models.ProgressRecord{
			UserID:              userID,
			VideoID:             videoID,
			WatchedSeconds:      watchedSeconds,
			TotalSeconds:        totalSeconds,
			LastPositionSeconds: positionSeconds,
			UpdatedAt:           time.Now(),
		}

		next.Completed = totalSeconds > 0 &&
			float64(watchedSeconds) >= float64(totalSeconds)*t.threshold

		if exists && current.Completed {
			// Monotonic until explicit reset.
			next.Completed = true
			next.CompletedAt = current.CompletedAt
		}
		if next.Completed && next.CompletedAt == nil {
			now := next.UpdatedAt
			next.CompletedAt = &now
			completedNow = true
		}

		if exists && sameProgress(&current, &next) {
			return current, false
		}
		return next, true
	})
	if err != nil {
		return models.ProgressRecord{}, err
	}

	if completedNow {
		t.logger.Debug().Str("user_id", userID).Str("video_id", videoID).Msg("video completed")
		if err := t.bus.Publish(events.TopicProgressCompleted, events.ProgressCompleted{
			UserID:      userID,
			VideoID:     videoID,
			CompletedAt: *record.CompletedAt,
		}); err != nil {
			t.logger.Warn().Err(err).Msg("publish completion event")
		}
	}
	return record, nil
}

// sameProgress reports whether two records agree on everything but the
// update timestamp.
func sameProgress(a, b *models.ProgressRecord) bool {
	return a.WatchedSeconds == b.WatchedSeconds &&
		a.LastPositionSeconds == b.LastPositionSeconds &&
		a.TotalSeconds == b.TotalSeconds &&
		a.Completed == b.Completed
}

// Get returns the record for the pair, or store.ErrNotFound.
func (t *Tracker) Get(ctx context.Context, userID, videoID string) (models.ProgressRecord, error) {
	return t.store.Get(ctx, userID, videoID)
}

// Reset clears watched, position, and completion back to zero. History is
// untouched. Resetting untracked state is a no-op.
func (t *Tracker) Reset(ctx context.Context, userID, videoID string) (models.ProgressRecord, error) {
	return t.store.Apply(ctx, userID, videoID, func(current models.ProgressRecord, exists bool) (models.ProgressRecord, bool) {
		next := models.ProgressRecord{
			UserID:       userID,
			VideoID:      videoID,
			TotalSeconds: current.TotalSeconds,
			UpdatedAt:    time.Now(),
		}
		return next, true
	})
}
