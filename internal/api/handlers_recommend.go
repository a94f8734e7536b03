// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/recommend"
	"github.com/maxishida/watchwise/internal/validation"
)

// GetRecommendations serves GET /api/v1/recommendations. A stale list is
// served rather than blocking; the metadata carries the computation time so
// callers can tell.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	list, err := h.engine.Get(r.Context(), userID, limit)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	if list.Stale || time.Since(list.AsOf) > time.Second {
		respondCached(w, http.StatusOK, list, list.AsOf)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// RefreshRecommendationsRequest is the POST /api/v1/recommendations/refresh
// body.
type RefreshRecommendationsRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Limit  int    `json:"limit" validate:"min=0"`
}

// RefreshRecommendations forces a recomputation, re-running all generators.
func (h *Handler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RefreshRecommendationsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	list, err := h.engine.Refresh(r.Context(), req.UserID, req.Limit)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// RecordInteractionRequest is the POST /api/v1/recommendations/interactions
// body.
type RecordInteractionRequest struct {
	UserID string                 `json:"user_id" validate:"required,max=128"`
	ItemID string                 `json:"item_id" validate:"required,max=128"`
	Kind   models.InteractionKind `json:"kind" validate:"required"`
}

// RecordInteraction appends a reaction to a recommended item. Dismissals take
// effect on the cached list immediately.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req RecordInteractionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	interaction, err := h.engine.RecordInteraction(r.Context(), req.UserID, req.ItemID, req.Kind)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidInteraction) {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
			return
		}
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, interaction)
}

// RecommendationStatus serves GET /api/v1/recommendations/status with engine
// provenance for dashboards.
func (h *Handler) RecommendationStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"generators":       h.engine.GeneratorNames(),
		"cached_users":     h.engine.CachedUsers(),
		"refresh_interval": h.cfg.Recommend.RefreshInterval.String(),
	})
}
