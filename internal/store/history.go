// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
)

const (
	historyPrefix     = "history:"
	historyTSPrefix   = "history_ts:"
	historyItemPrefix = "history_item:"
)

// HistoryStore is the append-only view history ledger.
// Appends are fully concurrent; there is no write contention by design.
type HistoryStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewHistoryStore creates a history store on the given database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHistoryStore(db *badger.DB, logger zerolog.Logger) *HistoryStore {
	return &HistoryStore{
		db:     db,
		logger: logger.With().Str("component", "history_store").Logger(),
	}
}

// historyKey builds the primary key for an entry.
func historyKey(userID string, viewedAt time.Time, id string) []byte {
	return []byte(historyPrefix + userID + ":" + invTS(viewedAt) + ":" + id)
}

// Append creates a new history entry. It always appends; there is no upsert.
// A missing ID or ViewedAt is filled in.
func (s *HistoryStore) Append(ctx context.Context, entry models.ViewHistoryEntry) (models.ViewHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.ViewHistoryEntry{}, err
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.ViewedAt.IsZero() {
		entry.ViewedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return models.ViewHistoryEntry{}, fmt.Errorf("marshal history entry: %w", err)
	}

	primary := historyKey(entry.UserID, entry.ViewedAt, entry.ID)
	ts := invTS(entry.ViewedAt)
	tsKey := []byte(historyTSPrefix + ts + ":" + entry.ID)
	itemKey := []byte(historyItemPrefix + entry.ItemID + ":" + ts + ":" + entry.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, data); err != nil {
			return fmt.Errorf("set entry: %w", err)
		}
		if err := txn.Set(tsKey, primary); err != nil {
			return fmt.Errorf("set recency index: %w", err)
		}
		if err := txn.Set(itemKey, primary); err != nil {
			return fmt.Errorf("set item index: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ViewHistoryEntry{}, err
	}
	return entry, nil
}

// ExtendLast updates the user's most recent entry for itemID in place,
// extending the watch duration of the same viewing session. The duration
// never shrinks and completion never regresses. Returns ErrNotFound when the
// most recent entry is for a different item or the user has no history.
func (s *HistoryStore) ExtendLast(ctx context.Context, userID, itemID string, watchDurationSeconds int, completed bool) (models.ViewHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.ViewHistoryEntry{}, err
	}

	var updated models.ViewHistoryEntry
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(historyPrefix + userID + ":")))
		defer it.Close()

		it.Rewind()
		if !it.Valid() {
			return ErrNotFound
		}

		item := it.Item()
		var entry models.ViewHistoryEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		if entry.ItemID != itemID {
			return ErrNotFound
		}

		if watchDurationSeconds > entry.WatchDurationSeconds {
			entry.WatchDurationSeconds = watchDurationSeconds
		}
		if completed {
			entry.Completed = true
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		updated = entry
		return txn.Set(item.KeyCopy(nil), data)
	})
	if err != nil {
		return models.ViewHistoryEntry{}, err
	}
	return updated, nil
}

// Query returns one page of the user's history, ordered by ViewedAt
// descending, plus an opaque cursor for the next page.
func (s *HistoryStore) Query(ctx context.Context, userID string, q models.HistoryQuery) (models.HistoryPage, error) {
	if q.PageSize <= 0 {
		q.PageSize = 50
	}
	if q.Window == "" {
		q.Window = models.WindowAll
	}
	cutoff := q.Window.Cutoff(time.Now())
	term := strings.ToLower(q.TextFilter)

	var cursorKey []byte
	if q.Cursor != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(q.Cursor)
		if err != nil || !strings.HasPrefix(string(decoded), historyPrefix+userID+":") {
			return models.HistoryPage{}, ErrInvalidCursor
		}
		cursorKey = decoded
	}

	page := models.HistoryPage{Entries: make([]models.ViewHistoryEntry, 0, q.PageSize)}
	prefix := []byte(historyPrefix + userID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions(prefix))
		defer it.Close()

		if cursorKey != nil {
			it.Seek(cursorKey)
			if it.Valid() && string(it.Item().Key()) == string(cursorKey) {
				it.Next()
			}
		} else {
			it.Rewind()
		}

		var lastKey []byte
		for ; it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry models.ViewHistoryEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}

			// Entries are ordered newest first; everything past the
			// cutoff is older still.
			if !cutoff.IsZero() && entry.ViewedAt.Before(cutoff) {
				lastKey = nil
				break
			}
			if !matchesQuery(&entry, q.Type, q.CompletedOnly, term) {
				continue
			}

			page.Entries = append(page.Entries, entry)
			lastKey = it.Item().KeyCopy(nil)
			if len(page.Entries) >= q.PageSize {
				it.Next()
				if !it.Valid() {
					lastKey = nil
				}
				break
			}
		}

		if lastKey != nil && len(page.Entries) >= q.PageSize {
			page.NextCursor = base64.RawURLEncoding.EncodeToString(lastKey)
		}
		return nil
	})
	if err != nil {
		return models.HistoryPage{}, err
	}
	return page, nil
}

// matchesQuery applies the non-cursor history filters to one entry.
func matchesQuery(entry *models.ViewHistoryEntry, ctype models.ContentType, completedOnly bool, term string) bool {
	if ctype != "" && entry.Type != ctype {
		return false
	}
	if completedOnly && !entry.Completed {
		return false
	}
	if term != "" && !snapshotMatches(&entry.Snapshot, term) {
		return false
	}
	return true
}

// snapshotMatches reports whether any searchable snapshot field contains the
// lowercased term.
func snapshotMatches(s *models.ContentSummary, term string) bool {
	return strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.Description), term) ||
		strings.Contains(strings.ToLower(s.Instructor), term) ||
		strings.Contains(strings.ToLower(s.Category), term)
}

// Stats folds the user's entries within the window into summary statistics.
// maxEntries bounds the fold; zero means unbounded.
func (s *HistoryStore) Stats(ctx context.Context, userID string, window models.TimeWindow, maxEntries int) (models.ViewStats, error) {
	if window == "" {
		window = models.WindowAll
	}
	cutoff := window.Cutoff(time.Now())

	var stats models.ViewStats
	categories := make(map[string]int)

	err := s.forEachUserEntry(ctx, userID, func(entry *models.ViewHistoryEntry) (bool, error) {
		if !cutoff.IsZero() && entry.ViewedAt.Before(cutoff) {
			return false, nil
		}
		stats.TotalViews++
		stats.TotalWatchSeconds += entry.WatchDurationSeconds
		if entry.Completed {
			stats.CompletedCount++
		}
		if entry.Snapshot.Category != "" {
			categories[entry.Snapshot.Category]++
		}
		if maxEntries > 0 && stats.TotalViews >= maxEntries {
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return models.ViewStats{}, err
	}

	if stats.TotalViews > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalViews)
		stats.AverageSessionSeconds = float64(stats.TotalWatchSeconds) / float64(stats.TotalViews)
	}

	best := 0
	for category, n := range categories {
		if n > best || (n == best && stats.MostViewedCategory == "") {
			best = n
			stats.MostViewedCategory = category
		}
	}
	return stats, nil
}

// Search returns up to limit entries whose snapshot matches the term,
// case-insensitively, newest first.
func (s *HistoryStore) Search(ctx context.Context, userID, term string, limit int) ([]models.ViewHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	lowered := strings.ToLower(term)

	results := make([]models.ViewHistoryEntry, 0, limit)
	err := s.forEachUserEntry(ctx, userID, func(entry *models.ViewHistoryEntry) (bool, error) {
		if snapshotMatches(&entry.Snapshot, lowered) {
			results = append(results, *entry)
		}
		return len(results) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RecentItemIDs returns the distinct items in the user's history, newest
// first, up to limit distinct items. A zero limit means unbounded. Used for
// exclusion sets and the collaborative lookup.
func (s *HistoryStore) RecentItemIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)

	err := s.forEachUserEntry(ctx, userID, func(entry *models.ViewHistoryEntry) (bool, error) {
		if _, ok := seen[entry.ItemID]; !ok {
			seen[entry.ItemID] = struct{}{}
			ids = append(ids, entry.ItemID)
		}
		return limit <= 0 || len(ids) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RecentByUser returns the user's newest entries, up to limit.
func (s *HistoryStore) RecentByUser(ctx context.Context, userID string, limit int) ([]models.ViewHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries := make([]models.ViewHistoryEntry, 0, limit)
	err := s.forEachUserEntry(ctx, userID, func(entry *models.ViewHistoryEntry) (bool, error) {
		entries = append(entries, *entry)
		return len(entries) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Recent returns entries across all users newer than since, newest first,
// up to maxEntries. Feeds the trending generator.
func (s *HistoryStore) Recent(ctx context.Context, since time.Time, maxEntries int) ([]models.ViewHistoryEntry, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	entries := make([]models.ViewHistoryEntry, 0, maxEntries)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(historyTSPrefix)))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			key := string(it.Item().Key())
			ts, err := timeFromInvTS(strings.SplitN(strings.TrimPrefix(key, historyTSPrefix), ":", 2)[0])
			if err != nil {
				return err
			}
			if ts.Before(since) {
				break
			}

			entry, err := resolveEntry(txn, it.Item())
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			if len(entries) >= maxEntries {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ByItem returns entries referencing itemID across all users, newest first,
// up to limit. Feeds the collaborative generator.
func (s *HistoryStore) ByItem(ctx context.Context, itemID string, limit int) ([]models.ViewHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries := make([]models.ViewHistoryEntry, 0, limit)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(historyItemPrefix + itemID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := resolveEntry(txn, it.Item())
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			if len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear bulk-deletes the user's entries matching the scope. Irreversible.
// Returns the number of entries removed.
func (s *HistoryStore) Clear(ctx context.Context, userID string, scope models.ClearScope) (int, error) {
	if scope == "" {
		scope = models.ClearAll
	}

	type target struct {
		primary []byte
		ts      []byte
		item    []byte
	}
	var targets []target

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(historyPrefix + userID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry models.ViewHistoryEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}
			if scope != models.ClearAll && string(entry.Type) != string(scope) {
				continue
			}
			ts := invTS(entry.ViewedAt)
			targets = append(targets, target{
				primary: it.Item().KeyCopy(nil),
				ts:      []byte(historyTSPrefix + ts + ":" + entry.ID),
				item:    []byte(historyItemPrefix + entry.ItemID + ":" + ts + ":" + entry.ID),
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Delete in chunks to stay under the transaction size limit.
	const chunk = 500
	for start := 0; start < len(targets); start += chunk {
		end := start + chunk
		if end > len(targets) {
			end = len(targets)
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			for _, t := range targets[start:end] {
				if err := txn.Delete(t.primary); err != nil {
					return err
				}
				if err := txn.Delete(t.ts); err != nil {
					return err
				}
				if err := txn.Delete(t.item); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("delete history chunk: %w", err)
		}
	}

	s.logger.Info().Str("user_id", userID).Str("scope", string(scope)).
		Int("removed", len(targets)).Msg("history cleared")
	return len(targets), nil
}

// forEachUserEntry iterates the user's entries newest first, calling fn until
// it returns false or an error.
func (s *HistoryStore) forEachUserEntry(ctx context.Context, userID string, fn func(*models.ViewHistoryEntry) (bool, error)) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(historyPrefix + userID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry models.ViewHistoryEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}
			cont, err := fn(&entry)
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
		return nil
	})
}

// resolveEntry follows an index item's value (a primary key) to the entry.
func resolveEntry(txn *badger.Txn, indexItem *badger.Item) (models.ViewHistoryEntry, error) {
	var primary []byte
	if err := indexItem.Value(func(val []byte) error {
		primary = append([]byte(nil), val...)
		return nil
	}); err != nil {
		return models.ViewHistoryEntry{}, fmt.Errorf("read index value: %w", err)
	}

	item, err := txn.Get(primary)
	if err != nil {
		return models.ViewHistoryEntry{}, fmt.Errorf("resolve index target: %w", err)
	}

	var entry models.ViewHistoryEntry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return models.ViewHistoryEntry{}, fmt.Errorf("decode entry: %w", err)
	}
	return entry, nil
}

// prefixIterOptions returns iterator options scoped to a key prefix.
func prefixIterOptions(prefix []byte) badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	return opts
}
