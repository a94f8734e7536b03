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
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
)

const favoritePrefix = "favorite:"

// FavoriteStore holds each user's saved items, unique per (user, item).
//
// Toggle is serialized per (user, item) with a keyed mutex so two concurrent
// toggles cannot both observe "absent" and both insert.
type FavoriteStore struct {
	db     *badger.DB
	logger zerolog.Logger

	// toggleLocks serializes Toggle per user|item key. Entries are evicted
	// when the last toggle for the key finishes.
	toggleLocks *keyedMutex
}

// NewFavoriteStore creates a favorite store on the given database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFavoriteStore(db *badger.DB, logger zerolog.Logger) *FavoriteStore {
	return &FavoriteStore{
		db:          db,
		logger:      logger.With().Str("component", "favorite_store").Logger(),
		toggleLocks: newKeyedMutex(),
	}
}

// favoriteKey builds the key for a (user, item) pair.
func favoriteKey(userID, itemID string) []byte {
	return []byte(favoritePrefix + userID + ":" + itemID)
}

// Add saves an item. Returns ErrAlreadyFavorited when the pair exists.
func (s *FavoriteStore) Add(ctx context.Context, userID string, ctype models.ContentType, itemID string, snapshot models.ContentSummary) (models.FavoriteEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.FavoriteEntry{}, err
	}

	entry := models.FavoriteEntry{
		ID:       uuid.New().String(),
		UserID:   userID,
		ItemID:   itemID,
		Type:     ctype,
		AddedAt:  time.Now(),
		Snapshot: snapshot,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return models.FavoriteEntry{}, fmt.Errorf("marshal favorite: %w", err)
	}

	key := favoriteKey(userID, itemID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrAlreadyFavorited
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check favorite: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return models.FavoriteEntry{}, err
	}
	return entry, nil
}

// Remove deletes a saved item. Returns ErrNotFound when absent.
func (s *FavoriteStore) Remove(ctx context.Context, userID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := favoriteKey(userID, itemID)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		return txn.Delete(key)
	})
}

// Toggle adds the item if absent, removes it if present. Returns true when
// the item ended up favorited. Serialized per (user, item).
func (s *FavoriteStore) Toggle(ctx context.Context, userID string, ctype models.ContentType, itemID string, snapshot models.ContentSummary) (bool, error) {
	lockKey := userID + "|" + itemID
	s.toggleLocks.lock(lockKey)
	defer s.toggleLocks.unlock(lockKey)

	favorited, err := s.IsFavorite(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if favorited {
		if err := s.Remove(ctx, userID, itemID); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := s.Add(ctx, userID, ctype, itemID, snapshot); err != nil {
		return false, err
	}
	return true, nil
}

// IsFavorite reports whether the (user, item) pair exists.
func (s *FavoriteStore) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(favoriteKey(userID, itemID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		exists = true
		return nil
	})
	return exists, err
}

// List returns the user's favorites, newest first. A zero limit means
// unbounded.
func (s *FavoriteStore) List(ctx context.Context, userID string, limit int) ([]models.FavoriteEntry, error) {
	entries, err := s.collect(ctx, userID, func(*models.FavoriteEntry) bool { return true })
	if err != nil {
		return nil, err
	}
	sortFavoritesByAddedAtDesc(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ByType returns the user's favorites of one content type, newest first.
func (s *FavoriteStore) ByType(ctx context.Context, userID string, ctype models.ContentType) ([]models.FavoriteEntry, error) {
	entries, err := s.collect(ctx, userID, func(e *models.FavoriteEntry) bool {
		return e.Type == ctype
	})
	if err != nil {
		return nil, err
	}
	sortFavoritesByAddedAtDesc(entries)
	return entries, nil
}

// ByCategory returns the user's favorites in one category, newest first.
func (s *FavoriteStore) ByCategory(ctx context.Context, userID, category string) ([]models.FavoriteEntry, error) {
	entries, err := s.collect(ctx, userID, func(e *models.FavoriteEntry) bool {
		return strings.EqualFold(e.Snapshot.Category, category)
	})
	if err != nil {
		return nil, err
	}
	sortFavoritesByAddedAtDesc(entries)
	return entries, nil
}

// Search returns favorites whose snapshot matches the term,
// case-insensitively, newest first.
func (s *FavoriteStore) Search(ctx context.Context, userID, term string) ([]models.FavoriteEntry, error) {
	lowered := strings.ToLower(term)
	entries, err := s.collect(ctx, userID, func(e *models.FavoriteEntry) bool {
		return snapshotMatches(&e.Snapshot, lowered)
	})
	if err != nil {
		return nil, err
	}
	sortFavoritesByAddedAtDesc(entries)
	return entries, nil
}

// Count returns the user's favorite counts broken down by content type.
func (s *FavoriteStore) Count(ctx context.Context, userID string) (models.FavoriteCounts, error) {
	var counts models.FavoriteCounts
	_, err := s.collect(ctx, userID, func(e *models.FavoriteEntry) bool {
		counts.Total++
		switch e.Type {
		case models.ContentTypeCourse:
			counts.Courses++
		case models.ContentTypeVideo:
			counts.Videos++
		}
		return false
	})
	if err != nil {
		return models.FavoriteCounts{}, err
	}
	return counts, nil
}

// ItemIDs returns the item IDs of all the user's favorites, for exclusion
// sets and the collaborative generator.
func (s *FavoriteStore) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	entries, err := s.collect(ctx, userID, func(*models.FavoriteEntry) bool { return true })
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for i := range entries {
		ids = append(ids, entries[i].ItemID)
	}
	return ids, nil
}

// collect iterates the user's favorites, keeping entries where keep returns
// true.
func (s *FavoriteStore) collect(ctx context.Context, userID string, keep func(*models.FavoriteEntry) bool) ([]models.FavoriteEntry, error) {
	var entries []models.FavoriteEntry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(favoritePrefix + userID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry models.FavoriteEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode favorite: %w", err)
			}
			if keep(&entry) {
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// sortFavoritesByAddedAtDesc orders entries newest first.
func sortFavoritesByAddedAtDesc(entries []models.FavoriteEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})
}
