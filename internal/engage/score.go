// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package engage computes the per-user engagement score. The score is a pure
// function of current state, always recomputed on demand and never persisted
// as a source of truth.
package engage

import (
	"math"

	"github.com/maxishida/watchwise/internal/models"
)

// Component caps. The total is bounded to [0, 100] by construction:
// 30 + 30 + 25 + 10 + 5.
const (
	viewScoreCap        = 30.0
	timeScoreCap        = 30.0
	completionScoreCap  = 25.0
	favoriteScoreCap    = 10.0
	interactionScoreCap = 5.0
)

// Score combines view statistics, favorites count, and recent recommendation
// interactions into a single bounded engagement score.
//
// The total is monotonically non-decreasing in every input.
func Score(stats models.ViewStats, favoritesCount, interactionCount int) models.EngagementBreakdown {
	b := models.EngagementBreakdown{
		ViewScore:        capped(float64(stats.TotalViews)*2, viewScoreCap),
		TimeScore:        capped(float64(stats.TotalWatchSeconds)/60, timeScoreCap),
		CompletionScore:  capped(float64(stats.CompletedCount)*5, completionScoreCap),
		FavoriteScore:    capped(float64(favoritesCount)*3, favoriteScoreCap),
		InteractionScore: capped(float64(interactionCount), interactionScoreCap),
	}
	b.Total = int(math.Round(b.ViewScore + b.TimeScore + b.CompletionScore + b.FavoriteScore + b.InteractionScore))
	return b
}

// capped clamps v to [0, max]. Negative inputs contribute nothing.
func capped(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
