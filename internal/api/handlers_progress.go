// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"net/http"
	"strconv"

	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/validation"
)

// UpdateProgressRequest is the PUT /api/v1/progress body.
type UpdateProgressRequest struct {
	UserID          string `json:"user_id" validate:"required,max=128"`
	VideoID         string `json:"video_id" validate:"required,max=128"`
	WatchedSeconds  int    `json:"watched_seconds" validate:"min=0"`
	PositionSeconds int    `json:"position_seconds" validate:"min=0"`
	TotalSeconds    int    `json:"total_seconds" validate:"min=0"`
}

// UpdateProgress upserts the watch state for a (user, video) pair.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req UpdateProgressRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	record, err := h.tracker.Update(r.Context(), req.UserID, req.VideoID, req.WatchedSeconds, req.PositionSeconds, req.TotalSeconds)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	if record.Completed {
		h.metrics.CompletionsTotal.Inc()
	}
	respondJSON(w, http.StatusOK, record)
}

// GetProgress serves GET /api/v1/progress for one (user, video) pair.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	videoID := r.URL.Query().Get("video_id")
	if userID == "" || videoID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id and video_id are required")
		return
	}

	record, err := h.tracker.Get(r.Context(), userID, videoID)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// ResetProgressRequest is the POST /api/v1/progress/reset body.
type ResetProgressRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	VideoID string `json:"video_id" validate:"required,max=128"`
}

// ResetProgress clears watch state and re-arms the completion transition.
func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	var req ResetProgressRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	record, err := h.tracker.Reset(r.Context(), req.UserID, req.VideoID)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// ContinueWatching serves GET /api/v1/continue-watching.
func (h *Handler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = h.cfg.Tracking.DefaultPageSize
	}
	if limit > h.cfg.Tracking.MaxPageSize {
		limit = h.cfg.Tracking.MaxPageSize
	}

	items, err := h.continueWatching.List(r.Context(), userID, limit)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}
