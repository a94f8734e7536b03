// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// FavoriteEntry is a saved item. At most one entry exists per (user, item).
type FavoriteEntry struct {
	// ID is the entry identifier (UUID).
	ID string `json:"id"`

	// UserID identifies the owner.
	UserID string `json:"user_id"`

	// ItemID is the saved catalog item.
	ItemID string `json:"item_id"`

	// Type is the content type at save time.
	Type ContentType `json:"type"`

	// AddedAt is when the favorite was created.
	AddedAt time.Time `json:"added_at"`

	// Snapshot is the catalog metadata captured at save time.
	Snapshot ContentSummary `json:"snapshot"`
}

// FavoriteCounts breaks a user's favorite count down by content type.
type FavoriteCounts struct {
	Total   int `json:"total"`
	Courses int `json:"courses"`
	Videos  int `json:"videos"`
}
