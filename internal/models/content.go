// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

// ContentType classifies a catalog item.
type ContentType string

const (
	// ContentTypeCourse is a multi-video course.
	ContentTypeCourse ContentType = "course"
	// ContentTypeVideo is a single video, possibly belonging to a course.
	ContentTypeVideo ContentType = "video"
)

// Valid reports whether the content type is a known value.
func (t ContentType) Valid() bool {
	return t == ContentTypeCourse || t == ContentTypeVideo
}

// ContentSummary is the read-only catalog metadata for an item.
// The core never mutates it; per-user records embed a copy at write time.
type ContentSummary struct {
	// ID is the catalog item identifier.
	ID string `json:"id"`

	// Type is the content type (course or video).
	Type ContentType `json:"type"`

	// Title is the display title.
	Title string `json:"title"`

	// Description is an optional long-form description.
	Description string `json:"description,omitempty"`

	// Thumbnail is an optional thumbnail URL.
	Thumbnail string `json:"thumbnail,omitempty"`

	// Instructor is the instructor name.
	Instructor string `json:"instructor,omitempty"`

	// Category is the content category.
	Category string `json:"category,omitempty"`

	// DurationSeconds is the total runtime, zero if unknown.
	DurationSeconds int `json:"duration_seconds,omitempty"`

	// ParentCourseID links a video back to its course, if any.
	ParentCourseID string `json:"parent_course_id,omitempty"`
}
