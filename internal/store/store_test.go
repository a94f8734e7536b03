// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// newTestDB opens an in-memory Badger instance that closes with the test.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestInvTSOrdering(t *testing.T) {
	earlier := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	// Later timestamps must sort lexicographically before earlier ones so
	// prefix iteration yields newest first.
	if invTS(later) >= invTS(earlier) {
		t.Errorf("invTS(later) = %q should sort before invTS(earlier) = %q", invTS(later), invTS(earlier))
	}
}

func TestInvTSRoundTrip(t *testing.T) {
	at := time.Date(2026, 8, 29, 9, 30, 0, 123456789, time.UTC)
	got, err := timeFromInvTS(invTS(at))
	if err != nil {
		t.Fatalf("timeFromInvTS: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("round trip = %v, want %v", got, at)
	}
}
