// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// ProgressRecord is the watch state for one (user, video) pair.
//
// WatchedSeconds counts cumulative unique seconds watched;
// LastPositionSeconds is the resumable offset. The two are independent: a
// viewer who skips around may have a furthest position well past their
// cumulative watch time.
//
// Completed is monotonic: once true it stays true until an explicit reset,
// regardless of out-of-order updates.
type ProgressRecord struct {
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id"`

	WatchedSeconds      int `json:"watched_seconds"`
	TotalSeconds        int `json:"total_seconds"`
	LastPositionSeconds int `json:"last_position_seconds"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// UpdatedAt orders last-writer-wins resolution for concurrent updates.
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressFraction returns WatchedSeconds/TotalSeconds clamped to [0, 1].
func (p *ProgressRecord) ProgressFraction() float64 {
	if p.TotalSeconds <= 0 {
		return 0
	}
	f := float64(p.WatchedSeconds) / float64(p.TotalSeconds)
	if f > 1 {
		return 1
	}
	return f
}

// ContinueWatchingItem is an in-progress, not-completed video joined with its
// catalog snapshot, ready for a "continue watching" rail.
type ContinueWatchingItem struct {
	ItemID              string         `json:"item_id"`
	Snapshot            ContentSummary `json:"snapshot"`
	WatchedSeconds      int            `json:"watched_seconds"`
	TotalSeconds        int            `json:"total_seconds"`
	LastPositionSeconds int            `json:"last_position_seconds"`
	ProgressFraction    float64        `json:"progress_fraction"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
