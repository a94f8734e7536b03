// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/events"
	"github.com/maxishida/watchwise/internal/logging"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/validation"
)

// ToggleFavoriteRequest is the POST /api/v1/favorites/toggle body.
type ToggleFavoriteRequest struct {
	UserID string             `json:"user_id" validate:"required,max=128"`
	ItemID string             `json:"item_id" validate:"required,max=128"`
	Type   models.ContentType `json:"type" validate:"required,oneof=course video"`
}

// ToggleFavorite flips the favorite state for one (user, item) pair.
// Concurrent toggles on the same pair serialize; two cannot both insert.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req ToggleFavoriteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	ctx := r.Context()
	snapshot, err := h.catalog.GetByID(ctx, req.ItemID)
	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "unknown item")
		return
	case err != nil:
		logging.Ctx(ctx).Warn().Err(err).Str("item_id", req.ItemID).Msg("snapshot unavailable, saving minimal entry")
		snapshot = models.ContentSummary{ID: req.ItemID, Type: req.Type}
	}

	favorited, err := h.favorites.Toggle(ctx, req.UserID, req.Type, req.ItemID, snapshot)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	if err := h.bus.Publish(events.TopicFavoritesChanged, events.FavoritesChanged{
		UserID: req.UserID,
		ItemID: req.ItemID,
		Added:  favorited,
	}); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("publish favorites event")
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

// ListFavorites serves GET /api/v1/favorites with optional type, category and
// text filters, newest first.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	ctx := r.Context()
	var (
		entries []models.FavoriteEntry
		err     error
	)
	switch {
	case r.URL.Query().Get("type") != "":
		ctype := models.ContentType(r.URL.Query().Get("type"))
		if !ctype.Valid() {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid content type")
			return
		}
		entries, err = h.favorites.ByType(ctx, userID, ctype)
	case r.URL.Query().Get("category") != "":
		entries, err = h.favorites.ByCategory(ctx, userID, r.URL.Query().Get("category"))
	case r.URL.Query().Get("q") != "":
		entries, err = h.favorites.Search(ctx, userID, r.URL.Query().Get("q"))
	default:
		limit, convErr := strconv.Atoi(r.URL.Query().Get("limit"))
		if convErr != nil || limit < 0 {
			limit = 0
		}
		entries, err = h.favorites.List(ctx, userID, limit)
	}
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// CheckFavorite serves GET /api/v1/favorites/check.
func (h *Handler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	itemID := r.URL.Query().Get("item_id")
	if userID == "" || itemID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id and item_id are required")
		return
	}

	favorited, err := h.favorites.IsFavorite(r.Context(), userID, itemID)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

// CountFavorites serves GET /api/v1/favorites/count.
func (h *Handler) CountFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	counts, err := h.favorites.Count(r.Context(), userID)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
