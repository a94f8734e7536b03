// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxishida/watchwise/internal/models"
)

const interactionPrefix = "interaction:"

// InteractionStore is the append-only per-user log of reactions to
// recommended items.
type InteractionStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// NewInteractionStore creates an interaction store on the given database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInteractionStore(db *badger.DB, logger zerolog.Logger) *InteractionStore {
	return &InteractionStore{
		db:     db,
		logger: logger.With().Str("component", "interaction_store").Logger(),
	}
}

// Append records a reaction. A missing ID or Timestamp is filled in.
func (s *InteractionStore) Append(ctx context.Context, interaction models.Interaction) (models.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return models.Interaction{}, err
	}
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	data, err := json.Marshal(interaction)
	if err != nil {
		return models.Interaction{}, fmt.Errorf("marshal interaction: %w", err)
	}

	key := []byte(interactionPrefix + interaction.UserID + ":" + invTS(interaction.Timestamp) + ":" + interaction.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return models.Interaction{}, err
	}
	return interaction, nil
}

// ListByUser returns the user's interactions, newest first, up to limit.
// A zero limit means unbounded.
func (s *InteractionStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Interaction, error) {
	var interactions []models.Interaction
	err := s.forEach(ctx, userID, func(i *models.Interaction) bool {
		interactions = append(interactions, *i)
		return limit <= 0 || len(interactions) < limit
	})
	if err != nil {
		return nil, err
	}
	return interactions, nil
}

// CountSince counts the user's interactions newer than since.
func (s *InteractionStore) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	count := 0
	err := s.forEach(ctx, userID, func(i *models.Interaction) bool {
		if i.Timestamp.Before(since) {
			return false
		}
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ItemIDs returns the distinct item IDs the user has reacted to, any kind.
// Feeds the exclusion set.
func (s *InteractionStore) ItemIDs(ctx context.Context, userID string) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	err := s.forEach(ctx, userID, func(i *models.Interaction) bool {
		if _, ok := seen[i.ItemID]; !ok {
			seen[i.ItemID] = struct{}{}
			ids = append(ids, i.ItemID)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// forEach iterates the user's interactions newest first until fn returns
// false.
func (s *InteractionStore) forEach(ctx context.Context, userID string, fn func(*models.Interaction) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(prefixIterOptions([]byte(interactionPrefix + userID + ":")))
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var interaction models.Interaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &interaction)
			}); err != nil {
				return fmt.Errorf("decode interaction: %w", err)
			}
			if !fn(&interaction) {
				break
			}
		}
		return nil
	})
}
