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

// RecordViewRequest is the POST /api/v1/history body.
type RecordViewRequest struct {
	UserID               string             `json:"user_id" validate:"required,max=128"`
	ItemID               string             `json:"item_id" validate:"required,max=128"`
	Type                 models.ContentType `json:"type" validate:"required,oneof=course video"`
	WatchDurationSeconds int                `json:"watch_duration_seconds" validate:"min=0"`
	Completed            bool               `json:"completed"`
}

// RecordView appends one view history entry. The catalog snapshot is captured
// at write time; a temporarily unreachable catalog degrades to a minimal
// snapshot rather than losing the view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req RecordViewRequest
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
		logging.Ctx(ctx).Warn().Err(err).Str("item_id", req.ItemID).Msg("snapshot unavailable, recording minimal entry")
		snapshot = models.ContentSummary{ID: req.ItemID, Type: req.Type}
	}

	entry, err := h.history.Append(ctx, models.ViewHistoryEntry{
		UserID:               req.UserID,
		ItemID:               req.ItemID,
		Type:                 req.Type,
		WatchDurationSeconds: req.WatchDurationSeconds,
		Completed:            req.Completed,
		Snapshot:             snapshot,
	})
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}
	h.metrics.HistoryAppendsTotal.Inc()

	if err := h.bus.Publish(events.TopicHistoryRecorded, events.HistoryRecorded{Entry: entry}); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("publish history event")
	}
	respondJSON(w, http.StatusCreated, entry)
}

// ExtendViewRequest is the POST /api/v1/history/extend body. It lengthens the
// user's most recent entry for the same item instead of appending a duplicate
// session.
type ExtendViewRequest struct {
	UserID               string `json:"user_id" validate:"required,max=128"`
	ItemID               string `json:"item_id" validate:"required,max=128"`
	WatchDurationSeconds int    `json:"watch_duration_seconds" validate:"min=0"`
	Completed            bool   `json:"completed"`
}

// ExtendView updates the newest history entry for the item in place.
func (h *Handler) ExtendView(w http.ResponseWriter, r *http.Request) {
	var req ExtendViewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	entry, err := h.history.ExtendLast(r.Context(), req.UserID, req.ItemID, req.WatchDurationSeconds, req.Completed)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// QueryHistory serves GET /api/v1/history with filtering and cursor paging.
func (h *Handler) QueryHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	q := models.HistoryQuery{
		Type:          models.ContentType(r.URL.Query().Get("type")),
		CompletedOnly: r.URL.Query().Get("completed") == "true",
		Window:        models.TimeWindow(r.URL.Query().Get("window")),
		TextFilter:    r.URL.Query().Get("filter"),
		Cursor:        r.URL.Query().Get("cursor"),
		PageSize:      h.pageSize(r.URL.Query().Get("page_size")),
	}
	if q.Type != "" && !q.Type.Valid() {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid content type")
		return
	}
	if q.Window != "" && !q.Window.Valid() {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid window")
		return
	}

	page, err := h.history.Query(r.Context(), userID, q)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// SearchHistory serves GET /api/v1/history/search, a text match over the
// denormalized snapshots.
func (h *Handler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	term := r.URL.Query().Get("q")
	if userID == "" || term == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id and q are required")
		return
	}

	entries, err := h.history.Search(r.Context(), userID, term, h.pageSize(r.URL.Query().Get("limit")))
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// HistoryStats serves GET /api/v1/history/stats.
func (h *Handler) HistoryStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	window := models.TimeWindow(r.URL.Query().Get("window"))
	if window == "" {
		window = models.WindowAll
	}
	if !window.Valid() {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid window")
		return
	}

	stats, err := h.history.Stats(r.Context(), userID, window, 0)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ClearHistory serves DELETE /api/v1/history. The scope parameter selects
// all entries, courses only, or videos only.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	scope := models.ClearScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = models.ClearAll
	}
	if !scope.Valid() {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid scope")
		return
	}

	removed, err := h.history.Clear(r.Context(), userID, scope)
	if err != nil {
		respondStoreError(r.Context(), w, err)
		return
	}
	h.engine.Invalidate(userID)
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// pageSize parses a page size parameter, applying the configured default and
// cap.
func (h *Handler) pageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return h.cfg.Tracking.DefaultPageSize
	}
	if n > h.cfg.Tracking.MaxPageSize {
		return h.cfg.Tracking.MaxPageSize
	}
	return n
}
