// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
)

// mockCatalog implements catalog.Catalog over in-memory fixtures.
type mockCatalog struct {
	byCategory   map[string][]models.ContentSummary
	byInstructor map[string][]models.ContentSummary
	err          error
}

func (m *mockCatalog) GetByID(ctx context.Context, itemID string) (models.ContentSummary, error) {
	return models.ContentSummary{}, m.err
}

func (m *mockCatalog) QueryByCategory(ctx context.Context, category string, limit int) ([]models.ContentSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byCategory[category], nil
}

func (m *mockCatalog) QueryByInstructor(ctx context.Context, instructor string, limit int) ([]models.ContentSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byInstructor[instructor], nil
}

func newTestStores(t *testing.T) (*store.HistoryStore, *store.FavoriteStore) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewHistoryStore(db, zerolog.Nop()), store.NewFavoriteStore(db, zerolog.Nop())
}

func view(userID, itemID string) models.ViewHistoryEntry {
	return models.ViewHistoryEntry{
		UserID: userID,
		ItemID: itemID,
		Type:   models.ContentTypeVideo,
		Snapshot: models.ContentSummary{
			ID:   itemID,
			Type: models.ContentTypeVideo,
		},
	}
}

func TestTrendingScoresViewCounts(t *testing.T) {
	history, _ := newTestStores(t)
	ctx := context.Background()

	// 12 views of item-hot by distinct users, a single view of item-warm.
	for i := 0; i < 12; i++ {
		if _, err := history.Append(ctx, view("viewer-"+string(rune('a'+i)), "item-hot")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := history.Append(ctx, view("viewer-a", "item-warm")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gen := NewTrendingGenerator(history, 7, 10, zerolog.Nop())
	items, err := gen.Generate(ctx, "u1", nil, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	top := items[0]
	if top.ItemID != "item-hot" {
		t.Fatalf("top item = %s, want item-hot", top.ItemID)
	}
	// 12 views over a divisor of 10 saturates at 1.0.
	if top.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", top.Score)
	}
	if top.Reason != models.ReasonTrending {
		t.Errorf("reason = %s, want %s", top.Reason, models.ReasonTrending)
	}
	if top.Metadata["views"] != "12" {
		t.Errorf("views metadata = %q, want 12", top.Metadata["views"])
	}
	if items[1].Score != 0.1 {
		t.Errorf("single view score = %v, want 0.1", items[1].Score)
	}
}

func TestTrendingHonorsExclusions(t *testing.T) {
	history, _ := newTestStores(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := history.Append(ctx, view("viewer-"+string(rune('a'+i)), "item-seen")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	gen := NewTrendingGenerator(history, 7, 10, zerolog.Nop())
	items, err := gen.Generate(ctx, "u1", map[string]struct{}{"item-seen": {}}, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("excluded item surfaced: %v", itemIDs(items))
	}
}

func TestTrendingIgnoresStaleViews(t *testing.T) {
	history, _ := newTestStores(t)
	ctx := context.Background()

	old := view("viewer-a", "item-old")
	old.ViewedAt = time.Now().AddDate(0, 0, -30)
	if _, err := history.Append(ctx, old); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := history.Append(ctx, view("viewer-b", "item-new")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gen := NewTrendingGenerator(history, 7, 10, zerolog.Nop())
	items, err := gen.Generate(ctx, "u1", nil, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "item-new" {
		t.Errorf("items = %v, want only item-new", itemIDs(items))
	}
}

func TestContentMatchesProfile(t *testing.T) {
	history, favorites := newTestStores(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := view("u1", "watched-"+string(rune('a'+i)))
		entry.Snapshot.Category = "golang"
		entry.Snapshot.Instructor = "rivera"
		if _, err := history.Append(ctx, entry); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	if _, err := favorites.Add(ctx, "u1", models.ContentTypeCourse, "fav-a", models.ContentSummary{
		ID: "fav-a", Type: models.ContentTypeCourse, Category: "golang",
	}); err != nil {
		t.Fatalf("seed favorite: %v", err)
	}

	cat := &mockCatalog{
		byCategory: map[string][]models.ContentSummary{
			"golang": {
				{ID: "cat-match", Type: models.ContentTypeCourse, Category: "golang"},
				{ID: "watched-a", Type: models.ContentTypeVideo, Category: "golang"},
			},
		},
		byInstructor: map[string][]models.ContentSummary{
			"rivera": {
				{ID: "ins-match", Type: models.ContentTypeVideo, Instructor: "rivera"},
			},
		},
	}

	gen := NewContentGenerator(history, favorites, cat, ContentConfig{
		HistoryLimit:      50,
		FavoritesLimit:    50,
		TopCategories:     3,
		TopInstructors:    2,
		PerCategory:       10,
		PerInstructor:     10,
		CategoryDivisor:   5,
		InstructorDivisor: 5,
	}, zerolog.Nop())

	items, err := gen.Generate(ctx, "u1", map[string]struct{}{"watched-a": {}}, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := map[string]models.RecommendationItem{}
	for _, item := range items {
		got[item.ItemID] = item
	}
	if _, ok := got["watched-a"]; ok {
		t.Error("already-watched item recommended")
	}

	catMatch, ok := got["cat-match"]
	if !ok {
		t.Fatal("category match missing")
	}
	// Category golang appears 4 times (3 views + 1 favorite): 4/5 = 0.8.
	if catMatch.Score != 0.8 {
		t.Errorf("category score = %v, want 0.8", catMatch.Score)
	}
	if catMatch.Reason != models.ReasonSimilar {
		t.Errorf("reason = %s, want %s", catMatch.Reason, models.ReasonSimilar)
	}
	if catMatch.Metadata["matched_category"] != "golang" {
		t.Errorf("matched_category = %q", catMatch.Metadata["matched_category"])
	}

	insMatch, ok := got["ins-match"]
	if !ok {
		t.Fatal("instructor match missing")
	}
	// Instructor rivera appears 3 times: 3/5 = 0.6.
	if insMatch.Score != 0.6 {
		t.Errorf("instructor score = %v, want 0.6", insMatch.Score)
	}
}

func TestContentEmptyProfile(t *testing.T) {
	history, favorites := newTestStores(t)
	gen := NewContentGenerator(history, favorites, &mockCatalog{}, ContentConfig{
		HistoryLimit: 50, FavoritesLimit: 50, TopCategories: 3, TopInstructors: 2,
		PerCategory: 10, PerInstructor: 10, CategoryDivisor: 5, InstructorDivisor: 5,
	}, zerolog.Nop())

	items, err := gen.Generate(context.Background(), "nobody", nil, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items for a user with no profile", len(items))
	}
}

func TestContentCatalogFailure(t *testing.T) {
	history, favorites := newTestStores(t)
	ctx := context.Background()

	entry := view("u1", "watched-a")
	entry.Snapshot.Category = "golang"
	if _, err := history.Append(ctx, entry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	wantErr := errors.New("catalog down")
	gen := NewContentGenerator(history, favorites, &mockCatalog{err: wantErr}, ContentConfig{
		HistoryLimit: 50, FavoritesLimit: 50, TopCategories: 3, TopInstructors: 2,
		PerCategory: 10, PerInstructor: 10, CategoryDivisor: 5, InstructorDivisor: 5,
	}, zerolog.Nop())

	if _, err := gen.Generate(ctx, "u1", nil, 20); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want the catalog error when no candidates survive", err)
	}
}

func TestCovisitCountsCoViewers(t *testing.T) {
	history, favorites := newTestStores(t)
	ctx := context.Background()

	// u1 watched item-a. Two other viewers of item-a also watched item-b,
	// one of them watched item-c too.
	seed := []struct{ user, item string }{
		{"u1", "item-a"},
		{"u2", "item-a"}, {"u2", "item-b"},
		{"u3", "item-a"}, {"u3", "item-b"}, {"u3", "item-c"},
	}
	for _, s := range seed {
		if _, err := history.Append(ctx, view(s.user, s.item)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	gen := NewCovisitGenerator(history, favorites, 20, 5, zerolog.Nop())
	items, err := gen.Generate(ctx, "u1", map[string]struct{}{"item-a": {}}, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %v, want item-b and item-c", itemIDs(items))
	}

	if items[0].ItemID != "item-b" {
		t.Fatalf("top item = %s, want item-b", items[0].ItemID)
	}
	// Two co-viewers over a divisor of 5.
	if items[0].Score != 0.4 {
		t.Errorf("score = %v, want 0.4", items[0].Score)
	}
	if items[0].Reason != models.ReasonRecommended {
		t.Errorf("reason = %s, want %s", items[0].Reason, models.ReasonRecommended)
	}
	if items[0].Metadata["co_viewers"] != "2" {
		t.Errorf("co_viewers metadata = %q, want 2", items[0].Metadata["co_viewers"])
	}
	if items[1].ItemID != "item-c" || items[1].Score != 0.2 {
		t.Errorf("second item = %+v, want item-c at 0.2", items[1])
	}
}

func TestCovisitColdStart(t *testing.T) {
	history, favorites := newTestStores(t)
	gen := NewCovisitGenerator(history, favorites, 20, 5, zerolog.Nop())

	items, err := gen.Generate(context.Background(), "nobody", nil, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items for a user with no activity", len(items))
	}
}

func TestCovisitSeedsFromFavorites(t *testing.T) {
	history, favorites := newTestStores(t)
	ctx := context.Background()

	// u1 has no history, only a favorite. Another fan of that item watched
	// item-next.
	if _, err := favorites.Add(ctx, "u1", models.ContentTypeVideo, "item-a", models.ContentSummary{ID: "item-a"}); err != nil {
		t.Fatalf("seed favorite: %v", err)
	}
	if _, err := history.Append(ctx, view("u2", "item-a")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := history.Append(ctx, view("u2", "item-next")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gen := NewCovisitGenerator(history, favorites, 20, 5, zerolog.Nop())
	items, err := gen.Generate(ctx, "u1", map[string]struct{}{"item-a": {}}, 20)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "item-next" {
		t.Errorf("items = %v, want only item-next", itemIDs(items))
	}
}
