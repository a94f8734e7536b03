// Watchwise - Engagement Tracking and Personalized Recommendations
// Copyright 2026 Max Ishida (maxishida)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/maxishida/watchwise

package models

import "time"

// InteractionKind classifies a user's reaction to a recommended item.
type InteractionKind string

const (
	// InteractionClick records that the user opened the item.
	InteractionClick InteractionKind = "click"
	// InteractionDismiss records that the user dismissed the item.
	InteractionDismiss InteractionKind = "dismiss"
	// InteractionNotInterested records an explicit negative signal.
	InteractionNotInterested InteractionKind = "not_interested"
	// InteractionCompleted records that the user finished the item.
	InteractionCompleted InteractionKind = "completed"
)

// Valid reports whether the kind is a known value.
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionClick, InteractionDismiss, InteractionNotInterested, InteractionCompleted:
		return true
	default:
		return false
	}
}

// Negative reports whether the kind removes the item from the current
// recommendation list and permanently excludes it from future refreshes.
func (k InteractionKind) Negative() bool {
	return k == InteractionDismiss || k == InteractionNotInterested
}

// Interaction is one append-only entry in a user's interaction log.
type Interaction struct {
	// ID is the entry identifier (UUID).
	ID string `json:"id"`

	// UserID identifies whose log this entry belongs to.
	UserID string `json:"user_id"`

	// ItemID is the recommended item reacted to.
	ItemID string `json:"item_id"`

	// Kind classifies the reaction.
	Kind InteractionKind `json:"kind"`

	// Timestamp is when the reaction occurred.
	Timestamp time.Time `json:"timestamp"`
}
