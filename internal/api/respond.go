// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/maxishida/watchwise/internal/catalog"
	"github.com/maxishida/watchwise/internal/logging"
	"github.com/maxishida/watchwise/internal/models"
	"github.com/maxishida/watchwise/internal/store"
	"github.com/maxishida/watchwise/internal/validation"
)

// respondJSON writes the standard response envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	respondWithMetadata(w, status, data, models.Metadata{Timestamp: time.Now()})
}

// respondCached writes the envelope flagged as served from a cache computed
// at asOf.
func respondCached(w http.ResponseWriter, status int, data interface{}, asOf time.Time) {
	respondWithMetadata(w, status, data, models.Metadata{
		Timestamp: time.Now(),
		Cached:    true,
		AsOf:      &asOf,
	})
}

func respondWithMetadata(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

// respondError writes an error envelope with a machine-readable code.
func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("encode error response")
	}
}

// respondValidationError renders a validation failure before any store
// access happened.
func respondValidationError(w http.ResponseWriter, err *validation.RequestError) {
	respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
}

// respondStoreError maps core errors onto the API error taxonomy. Timeouts
// on mutation paths surface as retryable upstream errors, never silently
// dropped.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrItemNotFound):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "not found")
	case errors.Is(err, store.ErrAlreadyFavorited):
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "already favorited")
	case errors.Is(err, store.ErrInvalidCursor):
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid page cursor")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, catalog.ErrUnavailable):
		logging.Ctx(ctx).Warn().Err(err).Msg("upstream unavailable")
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUpstreamUnavailable, "upstream unavailable, retry later")
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "internal error")
	}
}

// decodeBody decodes and closes a JSON request body.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
