// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package engage

import (
	"testing"

	"github.com/maxishida/watchwise/internal/models"
)

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name         string
		stats        models.ViewStats
		favorites    int
		interactions int
		wantTotal    int
	}{
		{
			name:      "zero activity",
			wantTotal: 0,
		},
		{
			name: "moderate activity",
			stats: models.ViewStats{
				TotalViews:        5,   // 10
				TotalWatchSeconds: 600, // 10
				CompletedCount:    2,   // 10
			},
			favorites:    2, // 6
			interactions: 3, // 3
			wantTotal:    39,
		},
		{
			name: "everything capped",
			stats: models.ViewStats{
				TotalViews:        1000,
				TotalWatchSeconds: 1000000,
				CompletedCount:    100,
			},
			favorites:    50,
			interactions: 50,
			wantTotal:    100,
		},
		{
			name: "single view single minute",
			stats: models.ViewStats{
				TotalViews:        1,  // 2
				TotalWatchSeconds: 60, // 1
			},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.stats, tt.favorites, tt.interactions)
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d (breakdown %+v)", got.Total, tt.wantTotal, got)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	inputs := []struct {
		views, seconds, completed, favorites, interactions int
	}{
		{0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{15, 1800, 5, 4, 5},
		{100000, 10000000, 100000, 100000, 100000},
	}

	for _, in := range inputs {
		got := Score(models.ViewStats{
			TotalViews:        in.views,
			TotalWatchSeconds: in.seconds,
			CompletedCount:    in.completed,
		}, in.favorites, in.interactions)
		if got.Total < 0 || got.Total > 100 {
			t.Errorf("Score(%+v) total %d out of [0,100]", in, got.Total)
		}
	}
}

func TestScoreMonotonic(t *testing.T) {
	base := Score(models.ViewStats{TotalViews: 3, TotalWatchSeconds: 300, CompletedCount: 1}, 1, 1)

	moreViews := Score(models.ViewStats{TotalViews: 4, TotalWatchSeconds: 300, CompletedCount: 1}, 1, 1)
	if moreViews.Total < base.Total {
		t.Errorf("more views lowered total: %d -> %d", base.Total, moreViews.Total)
	}

	moreTime := Score(models.ViewStats{TotalViews: 3, TotalWatchSeconds: 600, CompletedCount: 1}, 1, 1)
	if moreTime.Total < base.Total {
		t.Errorf("more watch time lowered total: %d -> %d", base.Total, moreTime.Total)
	}

	moreCompleted := Score(models.ViewStats{TotalViews: 3, TotalWatchSeconds: 300, CompletedCount: 2}, 1, 1)
	if moreCompleted.Total < base.Total {
		t.Errorf("more completions lowered total: %d -> %d", base.Total, moreCompleted.Total)
	}

	moreFavorites := Score(models.ViewStats{TotalViews: 3, TotalWatchSeconds: 300, CompletedCount: 1}, 2, 1)
	if moreFavorites.Total < base.Total {
		t.Errorf("more favorites lowered total: %d -> %d", base.Total, moreFavorites.Total)
	}

	moreInteractions := Score(models.ViewStats{TotalViews: 3, TotalWatchSeconds: 300, CompletedCount: 1}, 1, 2)
	if moreInteractions.Total < base.Total {
		t.Errorf("more interactions lowered total: %d -> %d", base.Total, moreInteractions.Total)
	}
}

func TestScoreNegativeInputsContributeNothing(t *testing.T) {
	got := Score(models.ViewStats{TotalViews: -5, TotalWatchSeconds: -100, CompletedCount: -1}, -2, -3)
	if got.Total != 0 {
		t.Errorf("negative inputs produced total %d, want 0", got.Total)
	}
}
