// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// ViewHistoryEntry is one append-only record of "user viewed item X for N
// seconds". Entries are never mutated after creation except by an explicit
// extend of the same viewing session.
type ViewHistoryEntry struct {
	// ID is the entry identifier (UUID).
	ID string `json:"id"`

	// UserID identifies the viewer.
	UserID string `json:"user_id"`

	// ItemID is the catalog item that was viewed.
	ItemID string `json:"item_id"`

	// Type is the content type at record time.
	Type ContentType `json:"type"`

	// ViewedAt is when the viewing occurred. Queries order by this field
	// descending.
	ViewedAt time.Time `json:"viewed_at"`

	// WatchDurationSeconds is the seconds watched in this session.
	WatchDurationSeconds int `json:"watch_duration_seconds"`

	// Completed marks whether this view finished the content.
	Completed bool `json:"completed"`

	// Snapshot is the catalog metadata captured at write time.
	Snapshot ContentSummary `json:"snapshot"`
}

// TimeWindow bounds a history query.
type TimeWindow string

const (
	// WindowToday covers the last 24 hours.
	WindowToday TimeWindow = "today"
	// WindowWeek covers the last 7 days.
	WindowWeek TimeWindow = "week"
	// WindowMonth covers the last 30 days.
	WindowMonth TimeWindow = "month"
	// WindowAll applies no time bound.
	WindowAll TimeWindow = "all"
)

// Valid reports whether w is a known window.
func (w TimeWindow) Valid() bool {
	switch w {
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return true
	default:
		return false
	}
}

// Cutoff returns the earliest ViewedAt admitted by the window, relative to
// now. The zero time means unbounded.
func (w TimeWindow) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowToday:
		return now.Add(-24 * time.Hour)
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// HistoryQuery filters a paged history read.
type HistoryQuery struct {
	// Type restricts entries to one content type when non-empty.
	Type ContentType `json:"type,omitempty"`

	// CompletedOnly restricts to completed views.
	CompletedOnly bool `json:"completed_only,omitempty"`

	// Window bounds ViewedAt. Defaults to WindowAll.
	Window TimeWindow `json:"window,omitempty"`

	// TextFilter is a case-insensitive substring match over the snapshot's
	// title, description, instructor, and category.
	TextFilter string `json:"text_filter,omitempty"`

	// Cursor is the opaque paging cursor from a previous page.
	Cursor string `json:"cursor,omitempty"`

	// PageSize is the maximum entries per page.
	PageSize int `json:"page_size,omitempty"`
}

// HistoryPage is one page of history entries ordered by ViewedAt descending,
// plus the cursor for the next page. NextCursor is empty on the last page.
type HistoryPage struct {
	Entries    []ViewHistoryEntry `json:"entries"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// ViewStats summarizes a user's viewing activity over the loaded window.
type ViewStats struct {
	TotalViews            int     `json:"total_views"`
	TotalWatchSeconds     int     `json:"total_watch_seconds"`
	CompletedCount        int     `json:"completed_count"`
	CompletionRate        float64 `json:"completion_rate"`
	MostViewedCategory    string  `json:"most_viewed_category,omitempty"`
	AverageSessionSeconds float64 `json:"average_session_seconds"`
}

// ClearScope selects which history entries a bulk clear removes.
type ClearScope string

const (
	// ClearAll removes every entry.
	ClearAll ClearScope = "all"
	// ClearCourses removes course entries only.
	ClearCourses ClearScope = "course"
	// ClearVideos removes video entries only.
	ClearVideos ClearScope = "video"
)

// Valid reports whether the scope is a known value.
func (s ClearScope) Valid() bool {
	return s == ClearAll || s == ClearCourses || s == ClearVideos
}
