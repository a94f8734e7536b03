// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package recommend implements the hybrid recommendation engine: independent
// candidate generators running concurrently, merged and ranked into a per-user
// cached list with a staleness window.
package recommend

import (
	"context"

	"github.com/maxishida/watchwise/internal/models"
)

// Generator produces scored candidates for one heuristic. Implementations
// must never return an item present in the exclusion set, and every score
// must lie in [0, 1].
type Generator interface {
	// Name identifies the generator in logs, metrics and provenance.
	Name() string

	// Generate returns up to count candidates for the user. A failing
	// generator returns an error; the engine treats that as an empty
	// contribution rather than failing the refresh.
	Generate(ctx context.Context, userID string, exclude map[string]struct{}, count int) ([]models.RecommendationItem, error)
}

// clampScore bounds a raw ratio to [0, 1]. Generators normalize counts with
// this, never returning raw counts as scores.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// targetCount converts a generator's share of the overall limit into a
// candidate budget. The share floors, but a positive share never rounds down
// to zero so small limits still draw from every generator.
func targetCount(limit int, share float64) int {
	if limit <= 0 || share <= 0 {
		return 0
	}
	n := int(float64(limit) * share)
	if n < 1 {
		n = 1
	}
	return n
}
