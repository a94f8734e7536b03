// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package recommend

import (
	"context"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// ContentConfig tunes the content-based generator's profile and lookup
// bounds.
type ContentConfig struct {
	HistoryLimit      int
	FavoritesLimit    int
	TopCategories     int
	TopInstructors    int
	PerCategory       int
	PerInstructor     int
	CategoryDivisor   float64
	InstructorDivisor float64
}

// ContentGenerator recommends catalog items matching the categories and
// instructors the user already gravitates toward.
type ContentGenerator struct {
	history   *store.HistoryStore
	favorites *store.FavoriteStore
	catalog   catalog.Catalog
	cfg       ContentConfig
	logger    zerolog.Logger
}

// NewContentGenerator creates a content-based generator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContentGenerator(history *store.HistoryStore, favorites *store.FavoriteStore, cat catalog.Catalog, cfg ContentConfig, logger zerolog.Logger) *ContentGenerator {
	return &ContentGenerator{
		history:   history,
		favorites: favorites,
		catalog:   cat,
		cfg:       cfg,
		logger:    logger.With().Str("generator", "content").Logger(),
	}
}

// Name implements Generator.
func (g *ContentGenerator) Name() string { return "content" }

// Generate builds the user's category/instructor frequency profile from
// recent history and favorites, then queries the catalog for matching items.
func (g *ContentGenerator) Generate(ctx context.Context, userID string, exclude map[string]struct{}, count int) ([]models.RecommendationItem, error) {
	if count <= 0 {
		return nil, nil
	}

	categories, instructors, err := g.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 && len(instructors) == 0 {
		return nil, nil
	}

	// Dedup within the generator, keeping the higher score when an item
	// matches both a category and an instructor.
	best := make(map[string]models.RecommendationItem)
	var catalogErr error

	for _, c := range topN(categories, g.cfg.TopCategories) {
		found, qErr := g.catalog.QueryByCategory(ctx, c.key, g.cfg.PerCategory)
		if qErr != nil {
			catalogErr = qErr
			g.logger.Warn().Err(qErr).Str("category", c.key).Msg("category lookup failed")
			continue
		}
		score := clampScore(float64(c.freq) / g.cfg.CategoryDivisor)
		g.admit(best, found, exclude, score, map[string]string{
			"matched_category": c.key,
			"frequency":        strconv.Itoa(c.freq),
		})
	}

	for _, ins := range topN(instructors, g.cfg.TopInstructors) {
		found, qErr := g.catalog.QueryByInstructor(ctx, ins.key, g.cfg.PerInstructor)
		if qErr != nil {
			catalogErr = qErr
			g.logger.Warn().Err(qErr).Str("instructor", ins.key).Msg("instructor lookup failed")
			continue
		}
		score := clampScore(float64(ins.freq) / g.cfg.InstructorDivisor)
		g.admit(best, found, exclude, score, map[string]string{
			"matched_instructor": ins.key,
			"frequency":          strconv.Itoa(ins.freq),
		})
	}

	if len(best) == 0 && catalogErr != nil {
		return nil, catalogErr
	}

	items := make([]models.RecommendationItem, 0, len(best))
	for _, item := range best {
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ItemID < items[j].ItemID
	})
	if len(items) > count {
		items = items[:count]
	}

	g.logger.Debug().Str("user_id", userID).Int("candidates", len(items)).Msg("content pass complete")
	return items, nil
}

// admit merges catalog results into best, skipping excluded items and keeping
// the higher score on collision.
func (g *ContentGenerator) admit(best map[string]models.RecommendationItem, found []models.ContentSummary, exclude map[string]struct{}, score float64, metadata map[string]string) {
	for i := range found {
		summary := found[i]
		if _, excluded := exclude[summary.ID]; excluded {
			continue
		}
		if existing, ok := best[summary.ID]; ok && existing.Score >= score {
			continue
		}
		best[summary.ID] = models.RecommendationItem{
			ItemID:   summary.ID,
			Type:     summary.Type,
			Snapshot: summary,
			Score:    score,
			Reason:   models.ReasonSimilar,
			Metadata: metadata,
		}
	}
}

// profile counts category and instructor occurrences over the user's most
// recent history entries and favorites.
func (g *ContentGenerator) profile(ctx context.Context, userID string) (categories, instructors map[string]int, err error) {
	categories = make(map[string]int)
	instructors = make(map[string]int)

	entries, err := g.history.RecentByUser(ctx, userID, g.cfg.HistoryLimit)
	if err != nil {
		return nil, nil, err
	}
	for i := range entries {
		countInto(categories, entries[i].Snapshot.Category)
		countInto(instructors, entries[i].Snapshot.Instructor)
	}

	favorites, err := g.favorites.List(ctx, userID, g.cfg.FavoritesLimit)
	if err != nil {
		return nil, nil, err
	}
	for i := range favorites {
		countInto(categories, favorites[i].Snapshot.Category)
		countInto(instructors, favorites[i].Snapshot.Instructor)
	}
	return categories, instructors, nil
}

func countInto(freq map[string]int, key string) {
	if key != "" {
		freq[key]++
	}
}

type freqEntry struct {
	key  string
	freq int
}

// topN returns the n highest-frequency keys, ties broken alphabetically for
// determinism.
func topN(freq map[string]int, n int) []freqEntry {
	entries := make([]freqEntry, 0, len(freq))
	for k, f := range freq {
		entries = append(entries, freqEntry{key: k, freq: f})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].freq != entries[j].freq {
			return entries[i].freq > entries[j].freq
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
