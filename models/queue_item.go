// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import "time"

// ItemStatus is the queue-management lifecycle state of an offline item.
//
// Transitions: pending → sending → {committed | conflict | failed};
// failed → pending (after backoff) or → discarded (max attempts exceeded);
// conflict → pending (auto-resolved) or stays conflict awaiting user input.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusSending   ItemStatus = "sending"
	StatusCommitted ItemStatus = "committed"
	StatusConflict  ItemStatus = "conflict"
	StatusFailed    ItemStatus = "failed"
	StatusDiscarded ItemStatus = "discarded"
)

// Terminal reports whether the status ends the item's lifecycle.
// Discarded items stay visible in snapshots until dismissed; committed items
// are removed from the queue on acknowledgement.
func (s ItemStatus) Terminal() bool {
	return s == StatusCommitted || s == StatusDiscarded
}

// OfflineQueueItem wraps a SyncOperation with the queue-management state the
// orchestrator drives through the lifecycle above. The queue exclusively owns
// items while they are live; callers only ever see copies via snapshots.
type OfflineQueueItem struct {
	Operation SyncOperation `json:"operation"`
	Status    ItemStatus    `json:"status"`

	// NextRetryAt gates dispatch of pending items: a failed item is not
	// eligible again until this instant passes. Zero means immediately
	// eligible. Keeping the schedule on the item (not in timers) makes the
	// queue resumable after a restart.
	NextRetryAt time.Time `json:"next_retry_at,omitzero"`

	// LastError records the most recent transport or storage failure text.
	LastError string `json:"last_error,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ready reports whether the item may be dispatched at instant now.
func (i OfflineQueueItem) Ready(now time.Time) bool {
	return i.Status == StatusPending && !i.NextRetryAt.After(now)
}
