// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package catalog defines the read-only content catalog collaborator and its
// HTTP client implementation. The catalog is external: this core only looks
// items up by ID and queries by category or instructor.
package catalog

import (
	"context"
	"errors"

	"github.com/maxishida/watchwise/internal/models"
)

// Sentinel errors for catalog access.
var (
	// ErrItemNotFound is returned when the catalog has no such item.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrUnavailable is returned when the catalog cannot be reached,
	// timed out, or the circuit breaker is open. Read paths feeding the
	// recommendation engine treat it as "no data from this source".
	ErrUnavailable = errors.New("catalog unavailable")
)

// Catalog is the lookup interface the core consumes.
type Catalog interface {
	// GetByID returns metadata for one item, or ErrItemNotFound.
	GetByID(ctx context.Context, itemID string) (models.ContentSummary, error)

	// QueryByCategory returns up to limit items in the category.
	QueryByCategory(ctx context.Context, category string, limit int) ([]models.ContentSummary, error)

	// QueryByInstructor returns up to limit items by the instructor.
	QueryByInstructor(ctx context.Context, instructor string, limit int) ([]models.ContentSummary, error)
}
