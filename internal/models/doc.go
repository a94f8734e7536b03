// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

// Package models defines the domain types shared across the Watchwise core:
// catalog snapshots, view history entries, favorites, progress records,
// interactions, recommendation items, and the API response envelope.
//
// All per-user records carry a denormalized ContentSummary snapshot taken at
// write time so reads never join back to the catalog for already-recorded
// entries. Snapshots are eventually stale: a catalog title change does not
// retroactively update old entries. This is a deliberate tradeoff.
package models
