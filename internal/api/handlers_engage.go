// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package api

import (
	"net/http"
	"time"

	"github.com/maxishida/watchwise/internal/engage"
	"github.com/maxishida/watchwise/internal/models"
)

// engagementInteractionWindow bounds which interactions count as "recent"
// for the score.
const engagementInteractionWindow = 30 * 24 * time.Hour

// EngagementScore serves GET /api/v1/engagement. The score is recomputed
// from current state on every read.
func (h *Handler) EngagementScore(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "user_id is required")
		return
	}

	ctx := r.Context()
	stats, err := h.history.Stats(ctx, userID, models.WindowAll, 0)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	counts, err := h.favorites.Count(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	interactions, err := h.interactions.CountSince(ctx, userID, time.Now().Add(-engagementInteractionWindow))
	if err != nil {
		respondStoreError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, engage.Score(stats, counts.Total, interactions))
}
