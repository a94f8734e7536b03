// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxishida/watchwise/internal/models"
)

func TestProgressApplyAndGet(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db, testLogger())
	ctx := context.Background()

	if _, err := s.Get(ctx, "u1", "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: got %v, want ErrNotFound", err)
	}

	record, err := s.Apply(ctx, "u1", "v1", func(current models.ProgressRecord, exists bool) (models.ProgressRecord, bool) {
		if exists {
			t.Error("merge saw exists=true for a fresh pair")
		}
		return models.ProgressRecord{
			UserID:         "u1",
			VideoID:        "v1",
			WatchedSeconds: 120,
			TotalSeconds:   1000,
			UpdatedAt:      time.Now(),
		}, true
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if record.WatchedSeconds != 120 {
		t.Errorf("WatchedSeconds = %d, want 120", record.WatchedSeconds)
	}

	got, err := s.Get(ctx, "u1", "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.WatchedSeconds != 120 || got.TotalSeconds != 1000 {
		t.Errorf("stored record = %+v", got)
	}
}

func TestProgressApplySkipsWrite(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db, testLogger())
	ctx := context.Background()

	first := models.ProgressRecord{
		UserID:         "u1",
		VideoID:        "v1",
		WatchedSeconds: 100,
		TotalSeconds:   1000,
		UpdatedAt:      time.Now(),
	}
	if _, err := s.Apply(ctx, "u1", "v1", func(models.ProgressRecord, bool) (models.ProgressRecord, bool) {
		return first, true
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// When merge declines the write, stored state is untouched.
	returned, err := s.Apply(ctx, "u1", "v1", func(current models.ProgressRecord, exists bool) (models.ProgressRecord, bool) {
		if !exists || current.WatchedSeconds != 100 {
			t.Errorf("merge input = %+v, exists=%v", current, exists)
		}
		return current, false
	})
	if err != nil {
		t.Fatalf("apply no-op: %v", err)
	}
	if returned.WatchedSeconds != 100 {
		t.Errorf("no-op returned %+v", returned)
	}

	stored, err := s.Get(ctx, "u1", "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("no-op still rewrote the record: %v != %v", stored.UpdatedAt, first.UpdatedAt)
	}
}

func TestProgressDelete(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db, testLogger())
	ctx := context.Background()

	if _, err := s.Apply(ctx, "u1", "v1", func(models.ProgressRecord, bool) (models.ProgressRecord, bool) {
		return models.ProgressRecord{UserID: "u1", VideoID: "v1", WatchedSeconds: 10}, true
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := s.Delete(ctx, "u1", "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1", "v1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}

	// Deleting missing state is not an error.
	if err := s.Delete(ctx, "u1", "v1"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestProgressListInProgress(t *testing.T) {
	db := newTestDB(t)
	s := NewProgressStore(db, testLogger())
	ctx := context.Background()

	seed := func(videoID string, watched int, completed bool, updatedAt time.Time) {
		t.Helper()
		if _, err := s.Apply(ctx, "u1", videoID, func(models.ProgressRecord, bool) (models.ProgressRecord, bool) {
			return models.ProgressRecord{
				UserID:         "u1",
				VideoID:        videoID,
				WatchedSeconds: watched,
				TotalSeconds:   1000,
				Completed:      completed,
				UpdatedAt:      updatedAt,
			}, true
		}); err != nil {
			t.Fatalf("seed %s: %v", videoID, err)
		}
	}

	now := time.Now()
	seed("v-old", 100, false, now.Add(-2*time.Hour))
	seed("v-new", 200, false, now.Add(-time.Minute))
	seed("v-done", 950, true, now)
	seed("v-unstarted", 0, false, now)

	items, err := s.ListInProgress(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d records, want 2 (completed and unstarted excluded)", len(items))
	}
	if items[0].VideoID != "v-new" || items[1].VideoID != "v-old" {
		t.Errorf("order = [%s %s], want [v-new v-old]", items[0].VideoID, items[1].VideoID)
	}

	limited, err := s.ListInProgress(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].VideoID != "v-new" {
		t.Errorf("limited list = %+v, want only v-new", limited)
	}
}
