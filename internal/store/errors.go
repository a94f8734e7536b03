// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import "errors"

// Sentinel errors for the store layer. Conflicts are recoverable: the caller
// decides the next action.
var (
	// ErrAlreadyFavorited is returned by FavoriteStore.Add when the
	// (user, item) pair already exists.
	ErrAlreadyFavorited = errors.New("item is already favorited")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCursor is returned for malformed paging cursors.
	ErrInvalidCursor = errors.New("invalid paging cursor")
)
