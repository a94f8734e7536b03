// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package events

import (
	"time"

	"github.com/maxishida/watchwise/internal/models"
)

// HistoryRecorded is the payload for TopicHistoryRecorded.
type HistoryRecorded struct {
	Entry models.ViewHistoryEntry `json:"entry"`
}

// ProgressCompleted is the payload for TopicProgressCompleted. Emitted at
// most once per completion; a reset re-arms the transition.
type ProgressCompleted struct {
	UserID      string    `json:"user_id"`
	VideoID     string    `json:"video_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// FavoritesChanged is the payload for TopicFavoritesChanged.
type FavoritesChanged struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
	Added  bool   `json:"added"`
}

// RecommendationsRefreshed is the payload for TopicRecommendationsRefreshed.
type RecommendationsRefreshed struct {
	UserID string    `json:"user_id"`
	Count  int       `json:"count"`
	AsOf   time.Time `json:"as_of"`
}
