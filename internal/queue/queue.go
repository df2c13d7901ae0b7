// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/store"
	"github.com/vpanarin/wealthkeeper/models"
)

type queueEntry struct {
	item models.OfflineQueueItem
	seq  uint64
}

type syncQueue struct {
	store  store.DurableQueueStore
	logger *logger.Logger

	mu      sync.Mutex
	entries map[models.EntityKey][]*queueEntry
	byID    map[string]*queueEntry
	parked  []*queueEntry // discarded items kept visible in snapshots
	seq     uint64

	wake chan struct{}
}

// NewSyncQueue constructs an empty SyncQueue writing through the given
// durable store. Call Restore with the store's LoadAll result before first
// use to recover items from a previous run.
func NewSyncQueue(durable store.DurableQueueStore, log *logger.Logger) SyncQueue {
	return &syncQueue{
		store:   durable,
		logger:  log,
		entries: make(map[models.EntityKey][]*queueEntry),
		byID:    make(map[string]*queueEntry),
		wake:    make(chan struct{}, 1),
	}
}

func (q *syncQueue) Enqueue(ctx context.Context, op models.SyncOperation) (models.OfflineQueueItem, error) {
	if op.ID == "" || op.EntityID == "" || !op.EntityType.Valid() || !op.Kind.Valid() {
		return models.OfflineQueueItem{}, fmt.Errorf("%w: id=%q entity=%s/%s kind=%q",
			ErrInvalidOperation, op.ID, op.EntityType, op.EntityID, op.Kind)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := op.Key()

	if tail := q.coalesceTarget(key); tail != nil {
		switch {
		case tail.item.Operation.Kind == models.OpDelete:
			return models.OfflineQueueItem{}, fmt.Errorf("%w: %s", ErrEntityDeleted, key)

		case op.Kind == models.OpDelete && tail.item.Operation.Kind == models.OpCreate:
			// The create never reached the server, so the delete has nothing
			// to undo there. Cancel both locally.
			if err := q.dropLocked(ctx, tail); err != nil {
				return models.OfflineQueueItem{}, err
			}
			q.logger.Debug().
				Str("func", "syncQueue.Enqueue").
				Str("entity", key.String()).
				Msg("delete cancelled an unsent create")
			return models.OfflineQueueItem{
				Operation:  op,
				Status:     models.StatusDiscarded,
				LastError:  "cancelled by delete of an unsent create",
				EnqueuedAt: tail.item.EnqueuedAt,
				UpdatedAt:  time.Now(),
			}, nil

		case op.Kind == models.OpDelete:
			// Delete supersedes the pending update. The item keeps its queue
			// position and earliest base, but takes the delete's identity so
			// the server cannot deduplicate it against a lost-ack attempt of
			// the update.
			return q.replaceTailLocked(ctx, tail, func(item *models.OfflineQueueItem) {
				item.Operation.ID = op.ID
				item.Operation.Kind = models.OpDelete
				item.Operation.Payload = nil
				item.Operation.CreatedAt = op.CreatedAt
			})

		case op.Kind == models.OpUpdate:
			// Fold consecutive edits of the same entity into one operation:
			// latest payload over the earliest base.
			return q.replaceTailLocked(ctx, tail, func(item *models.OfflineQueueItem) {
				item.Operation.ID = op.ID
				item.Operation.Payload = op.Payload
				item.Operation.CreatedAt = op.CreatedAt
			})
		}
	}

	now := time.Now()
	entry := &queueEntry{
		item: models.OfflineQueueItem{
			Operation:  op,
			Status:     models.StatusPending,
			EnqueuedAt: now,
			UpdatedAt:  now,
		},
		seq: q.nextSeq(),
	}

	if err := q.store.Persist(ctx, entry.item); err != nil {
		return models.OfflineQueueItem{}, fmt.Errorf("persist enqueued operation %s: %w", op.ID, err)
	}

	q.entries[key] = append(q.entries[key], entry)
	q.byID[op.ID] = entry
	q.notify()

	return entry.item, nil
}

// coalesceTarget returns the entity's tail item if it is still eligible for
// coalescing: pending, never attempted, and not blocked mid-lifecycle. A tail
// that has been on the wire cannot be merged into, because a lost ack may
// mean the server already applied it.
func (q *syncQueue) coalesceTarget(key models.EntityKey) *queueEntry {
	sub := q.entries[key]
	if len(sub) == 0 {
		return nil
	}
	tail := sub[len(sub)-1]
	if tail.item.Status != models.StatusPending || tail.item.Operation.Attempt > 0 {
		return nil
	}
	return tail
}

func (q *syncQueue) replaceTailLocked(ctx context.Context, tail *queueEntry, mutate func(*models.OfflineQueueItem)) (models.OfflineQueueItem, error) {
	oldID := tail.item.Operation.ID

	updated := tail.item
	mutate(&updated)
	updated.UpdatedAt = time.Now()

	if err := q.store.Persist(ctx, updated); err != nil {
		return models.OfflineQueueItem{}, fmt.Errorf("persist coalesced operation %s: %w", updated.Operation.ID, err)
	}
	if oldID != updated.Operation.ID {
		if err := q.store.Remove(ctx, oldID); err != nil {
			return models.OfflineQueueItem{}, fmt.Errorf("drop superseded operation %s: %w", oldID, err)
		}
		delete(q.byID, oldID)
		q.byID[updated.Operation.ID] = tail
	}

	tail.item = updated
	q.notify()
	return updated, nil
}

func (q *syncQueue) DequeueNext(ctx context.Context, t models.EntityType) (models.OfflineQueueItem, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()

	var best *queueEntry
	for key, sub := range q.entries {
		if key.Type != t || len(sub) == 0 {
			continue
		}
		head := sub[0]
		if !dispatchable(head.item, now) {
			continue
		}
		if best == nil || head.seq < best.seq {
			best = head
		}
	}
	if best == nil {
		return models.OfflineQueueItem{}, false, nil
	}

	updated := best.item
	updated.Status = models.StatusSending
	updated.Operation.Attempt++
	updated.UpdatedAt = now

	if err := q.store.Persist(ctx, updated); err != nil {
		return models.OfflineQueueItem{}, false, fmt.Errorf("persist dispatch of %s: %w", updated.Operation.ID, err)
	}

	best.item = updated
	return updated, true, nil
}

// dispatchable reports whether a sub-queue head may go on the wire now.
// Failed items become eligible again once their retry instant passes.
func dispatchable(item models.OfflineQueueItem, now time.Time) bool {
	switch item.Status {
	case models.StatusPending, models.StatusFailed:
		return !item.NextRetryAt.After(now)
	default:
		return false
	}
}

func (q *syncQueue) Ack(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	if err := q.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove committed operation %s: %w", id, err)
	}

	q.detachLocked(entry)
	delete(q.byID, id)
	q.notify()
	return nil
}

func (q *syncQueue) MarkConflict(ctx context.Context, id string, cause string) error {
	return q.transition(ctx, id, func(item *models.OfflineQueueItem) error {
		if item.Status != models.StatusSending {
			return fmt.Errorf("%w: %s is %s, want sending", ErrWrongState, id, item.Status)
		}
		item.Status = models.StatusConflict
		item.LastError = cause
		return nil
	})
}

func (q *syncQueue) MarkFailed(ctx context.Context, id string, cause error, nextRetryAt time.Time) error {
	return q.transition(ctx, id, func(item *models.OfflineQueueItem) error {
		if item.Status != models.StatusSending {
			return fmt.Errorf("%w: %s is %s, want sending", ErrWrongState, id, item.Status)
		}
		item.Status = models.StatusFailed
		item.LastError = cause.Error()
		item.NextRetryAt = nextRetryAt
		return nil
	})
}

func (q *syncQueue) Discard(ctx context.Context, id string, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	updated := entry.item
	updated.Status = models.StatusDiscarded
	updated.LastError = reason
	updated.UpdatedAt = time.Now()

	if err := q.store.Persist(ctx, updated); err != nil {
		return fmt.Errorf("persist discarded operation %s: %w", id, err)
	}

	entry.item = updated
	q.detachLocked(entry)
	q.parked = append(q.parked, entry)
	q.notify()
	return nil
}

func (q *syncQueue) Requeue(ctx context.Context, id string, payload, basePayload json.RawMessage, baseClock models.VectorClock) error {
	err := q.transition(ctx, id, func(item *models.OfflineQueueItem) error {
		if item.Status != models.StatusConflict {
			return fmt.Errorf("%w: %s is %s, want conflict", ErrWrongState, id, item.Status)
		}
		item.Status = models.StatusPending
		if item.Operation.Kind != models.OpDelete {
			item.Operation.Payload = payload
		}
		item.Operation.BasePayload = basePayload
		item.Operation.BaseClock = baseClock.Clone()
		item.Operation.Attempt = 0
		item.NextRetryAt = time.Time{}
		item.LastError = ""
		return nil
	})
	if err == nil {
		q.notify()
	}
	return err
}

func (q *syncQueue) transition(ctx context.Context, id string, mutate func(*models.OfflineQueueItem) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}

	updated := entry.item
	if err := mutate(&updated); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()

	if err := q.store.Persist(ctx, updated); err != nil {
		return fmt.Errorf("persist operation %s: %w", id, err)
	}

	entry.item = updated
	return nil
}

func (q *syncQueue) Item(id string) (models.OfflineQueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.byID[id]
	if !ok {
		return models.OfflineQueueItem{}, false
	}
	return entry.item, true
}

func (q *syncQueue) Snapshot() []models.OfflineQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	all := make([]*queueEntry, 0, len(q.byID)+len(q.parked))
	for _, sub := range q.entries {
		all = append(all, sub...)
	}
	all = append(all, q.parked...)

	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	items := make([]models.OfflineQueueItem, len(all))
	for i, entry := range all {
		items[i] = entry.item
	}
	return items
}

func (q *syncQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	depth := 0
	for _, sub := range q.entries {
		depth += len(sub)
	}
	return depth
}

func (q *syncQueue) Restore(ctx context.Context, items []models.OfflineQueueItem) error {
	sorted := make([]models.OfflineQueueItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].EnqueuedAt.Equal(sorted[j].EnqueuedAt) {
			return sorted[i].EnqueuedAt.Before(sorted[j].EnqueuedAt)
		}
		return sorted[i].Operation.ID < sorted[j].Operation.ID
	})

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range sorted {
		if item.Status == models.StatusSending {
			// A crash interrupted the send. The ID is the idempotency key, so
			// redelivery is safe.
			item.Status = models.StatusPending
			item.UpdatedAt = time.Now()
			if err := q.store.Persist(ctx, item); err != nil {
				return fmt.Errorf("persist recovered operation %s: %w", item.Operation.ID, err)
			}
		}

		entry := &queueEntry{item: item, seq: q.nextSeq()}
		q.byID[item.Operation.ID] = entry
		if item.Status == models.StatusDiscarded {
			q.parked = append(q.parked, entry)
			continue
		}
		key := item.Operation.Key()
		q.entries[key] = append(q.entries[key], entry)
	}

	if len(sorted) > 0 {
		q.logger.Info().
			Str("func", "syncQueue.Restore").
			Int("items", len(sorted)).
			Msg("queue restored from durable store")
		q.notify()
	}
	return nil
}

func (q *syncQueue) Wake() <-chan struct{} {
	return q.wake
}

func (q *syncQueue) dropLocked(ctx context.Context, entry *queueEntry) error {
	if err := q.store.Remove(ctx, entry.item.Operation.ID); err != nil {
		return fmt.Errorf("drop operation %s: %w", entry.item.Operation.ID, err)
	}
	q.detachLocked(entry)
	delete(q.byID, entry.item.Operation.ID)
	return nil
}

func (q *syncQueue) detachLocked(entry *queueEntry) {
	key := entry.item.Operation.Key()
	sub := q.entries[key]
	for i, e := range sub {
		if e == entry {
			q.entries[key] = append(sub[:i], sub[i+1:]...)
			break
		}
	}
	if len(q.entries[key]) == 0 {
		delete(q.entries, key)
	}
}

func (q *syncQueue) nextSeq() uint64 {
	q.seq++
	return q.seq
}

func (q *syncQueue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
