// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package store persists the four per-user collections on BadgerDB: view
// history (append-only), favorites (keyed by user+item), progress (keyed by
// user+video) and interactions (append-only).
//
// # Key layout
//
//	history:<user>:<invTS>:<id>      -> ViewHistoryEntry JSON
//	history_ts:<invTS>:<id>          -> primary history key (global recency index)
//	history_item:<item>:<invTS>:<id> -> primary history key (per-item index)
//	favorite:<user>:<item>           -> FavoriteEntry JSON
//	progress:<user>:<video>          -> ProgressRecord JSON
//	interaction:<user>:<invTS>:<id>  -> Interaction JSON
//
// invTS is the zero-padded inverted Unix-nano timestamp, so lexicographic
// ascending iteration returns newest entries first. New appends sort before
// any existing cursor position, which keeps cursor paging stable under
// concurrent writes.
package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/config"
)

// Open opens the Badger database per the storage configuration.
func Open(cfg config.StorageConfig, logger zerolog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithLogger(badgerLogger{logger.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// OpenInMemory opens a throwaway in-memory database. Intended for tests.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return db, nil
}

// badgerLogger adapts zerolog to badger's logger interface.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

// invTS renders t as a zero-padded inverted Unix-nano string so newer times
// sort lexicographically first.
func invTS(t time.Time) string {
	return fmt.Sprintf("%020d", uint64(math.MaxInt64)-uint64(t.UnixNano()))
}

// timeFromInvTS recovers the timestamp encoded by invTS.
func timeFromInvTS(s string) (time.Time, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse inverted timestamp: %w", err)
	}
	return time.Unix(0, int64(uint64(math.MaxInt64)-v)), nil
}
