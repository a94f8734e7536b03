// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package progress

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/store"
)

func newTestTracker(t *testing.T) (*Tracker, *events.Bus) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bus := events.NewBus(zerolog.Nop())
	t.Cleanup(func() { bus.Close() })

	progressStore := store.NewProgressStore(db, zerolog.Nop())
	return NewTracker(progressStore, bus, 0.9, zerolog.Nop()), bus
}

func TestTrackerCompletionThreshold(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	// 850 of 1000 is below the 0.9 threshold.
	record, err := tracker.Update(ctx, "u1", "v1", 850, 850, 1000)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if record.Completed {
		t.Error("850/1000 marked completed, want not completed")
	}

	// 900 of 1000 crosses it.
	record, err = tracker.Update(ctx, "u1", "v1", 900, 900, 1000)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !record.Completed {
		t.Error("900/1000 not marked completed")
	}
	if record.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
}

func TestTrackerCompletionMonotonic(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Update(ctx, "u1", "v1", 950, 950, 1000); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A stale, lower update must not regress completion.
	record, err := tracker.Update(ctx, "u1", "v1", 100, 100, 1000)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if !record.Completed {
		t.Error("stale update regressed completion")
	}
	if record.CompletedAt == nil {
		t.Error("stale update dropped CompletedAt")
	}
}

func TestTrackerResetRearmsCompletion(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Update(ctx, "u1", "v1", 950, 950, 1000); err != nil {
		t.Fatalf("update: %v", err)
	}

	record, err := tracker.Reset(ctx, "u1", "v1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if record.Completed || record.WatchedSeconds != 0 || record.LastPositionSeconds != 0 {
		t.Errorf("after reset record = %+v, want zeroed state", record)
	}
	if record.CompletedAt != nil {
		t.Error("reset kept CompletedAt")
	}

	// Completing again after a reset works.
	record, err = tracker.Update(ctx, "u1", "v1", 990, 990, 1000)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if !record.Completed {
		t.Error("could not complete again after reset")
	}
}

func TestTrackerIdenticalUpdateIsNoOp(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	first, err := tracker.Update(ctx, "u1", "v1", 300, 300, 1000)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	second, err := tracker.Update(ctx, "u1", "v1", 300, 300, 1000)
	if err != nil {
		t.Fatalf("repeat update: %v", err)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("identical update rewrote state: %v != %v", second.UpdatedAt, first.UpdatedAt)
	}
}

func TestTrackerEmitsCompletionEventOnce(t *testing.T) {
	tracker, bus := newTestTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx, events.TopicProgressCompleted)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := tracker.Update(ctx, "u1", "v1", 950, 950, 1000); err != nil {
		t.Fatalf("update: %v", err)
	}
	// A second completed-state update must not re-emit.
	if _, err := tracker.Update(ctx, "u1", "v1", 990, 990, 1000); err != nil {
		t.Fatalf("second update: %v", err)
	}

	select {
	case msg := <-messages:
		var payload events.ProgressCompleted
		if err := events.Decode(msg, &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		msg.Ack()
		if payload.UserID != "u1" || payload.VideoID != "v1" {
			t.Errorf("payload = %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no completion event received")
	}

	select {
	case msg := <-messages:
		msg.Ack()
		t.Error("completion event emitted twice")
	case <-time.After(200 * time.Millisecond):
	}
}
