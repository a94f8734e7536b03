// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// APIResponse is the standard response envelope for all API endpoints.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response-level observability fields.
type Metadata struct {
	// Timestamp is the server time when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// Cached is set when the response was served from a cache.
	Cached bool `json:"cached,omitempty"`

	// AsOf is the computation time of cached data, when it differs from
	// Timestamp.
	AsOf *time.Time `json:"as_of,omitempty"`
}

// APIError is a machine-readable error payload.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API. Mapped from the core error taxonomy:
// validation failures are rejected before any store access, conflicts are
// recoverable by the caller, upstream failures on mutation paths are
// retryable.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)
