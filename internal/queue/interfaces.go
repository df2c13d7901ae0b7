// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package queue holds the offline sync queue: a durable, per-entity FIFO of
// operations awaiting replay against the remote store.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vpanarin/wealthkeeper/models"
)

// SyncQueue orders local mutations for transmission. Operations addressing
// the same entity are dispatched strictly in enqueue order, one in flight per
// entity at a time. Every state transition is written to the durable store
// before the call returns.
type SyncQueue interface {
	// Enqueue adds op to its entity's sub-queue, coalescing with a still
	// pending tail item where the rules allow:
	//
	//   - update onto a pending create/update folds into one item carrying
	//     the latest payload and the earliest base clock and base payload;
	//   - delete supersedes a pending update;
	//   - delete onto a pending, never-sent create cancels both, and the
	//     returned item carries StatusDiscarded with nothing queued;
	//   - any operation behind a pending delete is rejected with
	//     ErrEntityDeleted.
	//
	// Returns the resulting queue item.
	Enqueue(ctx context.Context, op models.SyncOperation) (models.OfflineQueueItem, error)

	// DequeueNext hands out the oldest dispatchable item of the given entity
	// type and marks it sending. An item is dispatchable when it heads its
	// entity's sub-queue, is pending or failed, and its NextRetryAt has
	// passed. Entities whose head is in flight or conflicted are skipped.
	// ok is false when nothing is dispatchable right now.
	DequeueNext(ctx context.Context, t models.EntityType) (item models.OfflineQueueItem, ok bool, err error)

	// Ack marks the operation committed and removes it from the queue and
	// the durable store.
	Ack(ctx context.Context, id string) error

	// MarkConflict parks the operation in conflict state. The entity's
	// sub-queue stays blocked behind it until the conflict is resolved.
	MarkConflict(ctx context.Context, id string, cause string) error

	// MarkFailed records a transient failure and schedules the next attempt
	// at nextRetryAt.
	MarkFailed(ctx context.Context, id string, cause error, nextRetryAt time.Time) error

	// Discard removes the operation from its sub-queue permanently. The item
	// stays visible in snapshots with StatusDiscarded and the given reason.
	Discard(ctx context.Context, id string, reason string) error

	// Requeue returns a conflicted operation to pending with resolved
	// payload, base payload and base clock, ready for immediate redispatch.
	Requeue(ctx context.Context, id string, payload, basePayload json.RawMessage, baseClock models.VectorClock) error

	// Item returns a copy of the queue item with the given operation ID.
	Item(id string) (models.OfflineQueueItem, bool)

	// Snapshot returns copies of all items, including discarded ones, in
	// enqueue order.
	Snapshot() []models.OfflineQueueItem

	// Depth returns the number of live (non-terminal) items.
	Depth() int

	// Restore rebuilds the queue from items loaded out of the durable store.
	// Items caught mid-send by a crash are reverted to pending.
	Restore(ctx context.Context, items []models.OfflineQueueItem) error

	// Wake returns a channel signalled whenever new dispatchable work may
	// have appeared.
	Wake() <-chan struct{}
}
