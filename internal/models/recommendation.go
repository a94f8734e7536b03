// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// RecommendReason classifies why an item was recommended.
type RecommendReason string

const (
	// ReasonTrending marks items popular across all users recently.
	ReasonTrending RecommendReason = "trending"
	// ReasonSimilar marks items matching the user's categories/instructors.
	ReasonSimilar RecommendReason = "similar"
	// ReasonContinue marks in-progress items.
	ReasonContinue RecommendReason = "continue"
	// ReasonNew marks recently added catalog items.
	ReasonNew RecommendReason = "new"
	// ReasonRecommended marks collaborative-filtering candidates.
	ReasonRecommended RecommendReason = "recommended"
)

// RecommendationItem is one ranked suggestion. It is ephemeral: generated on
// refresh, held in a per-user cache, discarded once stale.
type RecommendationItem struct {
	// ItemID is the suggested catalog item.
	ItemID string `json:"item_id"`

	// Type is the content type.
	Type ContentType `json:"type"`

	// Snapshot is the catalog metadata for display.
	Snapshot ContentSummary `json:"snapshot"`

	// Score is the generator score, always in [0, 1].
	Score float64 `json:"score"`

	// Reason tags which heuristic produced the item.
	Reason RecommendReason `json:"reason"`

	// Metadata carries optional generator-specific detail.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RecommendationList is an ordered, deduplicated recommendation result with
// its provenance. Stale lists are served rather than blocking the caller; the
// AsOf timestamp and Stale flag make that distinguishable.
type RecommendationList struct {
	UserID string               `json:"user_id"`
	Items  []RecommendationItem `json:"items"`

	// AsOf is when the list was computed.
	AsOf time.Time `json:"as_of"`

	// Stale indicates the list is older than the refresh interval.
	Stale bool `json:"stale"`

	// GeneratorsUsed lists the generators that contributed candidates.
	GeneratorsUsed []string `json:"generators_used"`

	// Reason explains an empty list (e.g. all generators failed).
	Reason string `json:"reason,omitempty"`
}

// EngagementBreakdown is the component-wise engagement score for a user.
// The total is always in [0, 100] and is recomputed from current state on
// every read; any persisted copy is a read-through cache, never the source
// of truth.
type EngagementBreakdown struct {
	ViewScore        float64 `json:"view_score"`
	TimeScore        float64 `json:"time_score"`
	CompletionScore  float64 `json:"completion_score"`
	FavoriteScore    float64 `json:"favorite_score"`
	InteractionScore float64 `json:"interaction_score"`
	Total            int     `json:"total"`
}
