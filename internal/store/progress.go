// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
)

const progressPrefix = "progress:"

// ProgressStore keeps one watch-state record per (user, video).
type ProgressStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewProgressStore creates a progress store on the given database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProgressStore(db *badger.DB, logger zerolog.Logger) *ProgressStore {
	return &ProgressStore{
		db:     db,
		logger: logger.With().Str("component", "progress_store").Logger(),
	}
}

// progressKey builds the key for a (user, video) pair.
func progressKey(userID, videoID string) []byte {
	return []byte(progressPrefix + userID + ":" + videoID)
}

// Get returns the record for the pair, or ErrNotFound.
func (s *ProgressStore) Get(ctx context.Context, userID, videoID string) (models.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ProgressRecord{}, err
	}

	var record models.ProgressRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(userID, videoID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get progress: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return models.ProgressRecord{}, err
	}
	return record, nil
}

// Apply atomically reads the current record for the pair, passes it (with a
// flag for existence) to merge, and stores the result when merge's second
// return is true. The read-modify-write runs inside one transaction so
// concurrent updates cannot interleave; returning store=false makes the
// whole call a no-op on stored state.
func (s *ProgressStore) Apply(ctx context.Context, userID, videoID string, merge func(current models.ProgressRecord, exists bool) (models.ProgressRecord, bool)) (models.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ProgressRecord{}, err
	}

	key := progressKey(userID, videoID)
	var result models.ProgressRecord

	err := s.db.Update(func(txn *badger.Txn) error {
		var current models.ProgressRecord
		exists := false

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get progress: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &current)
			}); err != nil {
				return fmt.Errorf("decode progress: %w", err)
			}
			exists = true
		}

		merged, write := merge(current, exists)
		result = merged
		if !write {
			return nil
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal progress: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return models.ProgressRecord{}, err
	}
	return result, nil
}

// Delete removes the record for the pair. Missing records are not an error;
// a reset of untracked state is a no-op.
func (s *ProgressStore) Delete(ctx context.Context, userID, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(progressKey(userID, videoID))
	})
}

// ListInProgress returns the user's records with watched time but no
// completion, ordered by most recent update descending, up to limit.
func (s *ProgressStore) ListInProgress(ctx context.Context, userID string, limit int) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(progressPrefix + userID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record models.ProgressRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return fmt.Errorf("decode progress: %w", err)
			}
			if record.Completed || record.WatchedSeconds <= 0 {
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
