// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package service implements the synchronization engine: conflict detection
// and resolution plus the orchestrator that drains the offline queue against
// the remote store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vpanarin/wealthkeeper/internal/adapter"
	"github.com/vpanarin/wealthkeeper/internal/clock"
	"github.com/vpanarin/wealthkeeper/internal/events"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/queue"
	"github.com/vpanarin/wealthkeeper/internal/utils"
	"github.com/vpanarin/wealthkeeper/models"
)

// retryScanInterval bounds how stale a NextRetryAt gate can go unnoticed
// when no wake signal arrives.
const retryScanInterval = 500 * time.Millisecond

var errInconsistentConflict = errors.New("server reported conflict for causally ordered operation")

type trackedConflict struct {
	conflict models.SyncConflict
	analysis models.ConflictAnalysis
	resolved bool
}

// Orchestrator drives queued operations through transmission, retry,
// conflict resolution and commit. One orchestrator runs per client process.
type Orchestrator struct {
	cfg       models.AutoSyncConfig
	queue     queue.SyncQueue
	transport adapter.TransportAdapter
	push      adapter.PushChannel
	tracker   *clock.Tracker
	bus       *events.Bus

	detector *ConflictDetector
	resolver *ConflictResolver
	metrics  *Metrics
	breaker  *circuitBreaker
	schedule Schedule
	ids      *utils.UUIDGenerator
	logger   *logger.Logger

	jobs       chan models.OfflineQueueItem
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	sendCancel context.CancelFunc

	mu        sync.Mutex
	started   bool
	conflicts map[string]*trackedConflict
}

// NewOrchestrator wires the engine together. push may be nil when no
// real-time channel is configured; remote changes are then only discovered
// through send-time conflicts.
func NewOrchestrator(
	cfg models.AutoSyncConfig,
	q queue.SyncQueue,
	transport adapter.TransportAdapter,
	push adapter.PushChannel,
	tracker *clock.Tracker,
	bus *events.Bus,
	log *logger.Logger,
) *Orchestrator {
	cfg = cfg.Normalize()
	ids := utils.NewUUIDGenerator()

	return &Orchestrator{
		cfg:       cfg,
		queue:     q,
		transport: transport,
		push:      push,
		tracker:   tracker,
		bus:       bus,
		detector:  NewConflictDetector(ids, log),
		resolver:  NewConflictResolver(log),
		metrics:   NewMetrics(),
		breaker:   newCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		schedule:  Schedule{Base: cfg.BackoffBase, Cap: cfg.BackoffCap},
		ids:       ids,
		logger:    log,
		jobs:      make(chan models.OfflineQueueItem),
		quit:      make(chan struct{}),
		conflicts: make(map[string]*trackedConflict),
	}
}

// EnqueueLocalChange stamps a local mutation with a fresh clock and
// idempotency key and admits it to the queue. payload is the full entity
// state after the change (nil for deletes); basePayload is the state the
// change was made against (nil for creates).
func (o *Orchestrator) EnqueueLocalChange(
	ctx context.Context,
	entityType models.EntityType,
	entityID string,
	kind models.OperationKind,
	payload, basePayload json.RawMessage,
) (models.OfflineQueueItem, error) {
	key := models.EntityKey{Type: entityType, ID: entityID}

	op := models.SyncOperation{
		ID:          o.ids.Generate(),
		EntityType:  entityType,
		EntityID:    entityID,
		Kind:        kind,
		Payload:     payload,
		BasePayload: basePayload,
		BaseClock:   o.tracker.BumpLocal(key),
		CreatedAt:   time.Now(),
	}
	if kind == models.OpDelete {
		op.Payload = nil
	}

	item, err := o.queue.Enqueue(ctx, op)
	if err != nil {
		return models.OfflineQueueItem{}, fmt.Errorf("enqueue local change for %s: %w", key, err)
	}

	if item.Status == models.StatusDiscarded {
		// a delete cancelled an unsent create; nothing will be transmitted
		o.emit(models.SyncEvent{
			Type:        models.EventDiscarded,
			Entity:      key,
			OperationID: item.Operation.ID,
			Error:       item.LastError,
		})
		return item, nil
	}

	o.metrics.IncQueued()
	o.emit(models.SyncEvent{
		Type:        models.EventQueued,
		Entity:      key,
		OperationID: item.Operation.ID,
	})
	return item, nil
}

// Run starts the dispatcher, the worker pool and the push listener. It
// returns immediately; stop with Shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.started = true
	o.mu.Unlock()

	sendCtx, cancel := context.WithCancel(ctx)
	o.sendCancel = cancel

	for i := 0; i < o.cfg.Concurrency; i++ {
		o.wg.Add(1)
		go o.worker(sendCtx)
	}

	o.wg.Add(1)
	go o.dispatchLoop(sendCtx)

	if o.push != nil {
		o.wg.Add(1)
		go o.listenPush(sendCtx)
	}

	o.logger.Info().
		Str("func", "Orchestrator.Run").
		Int("concurrency", o.cfg.Concurrency).
		Msg("sync orchestrator started")
	return nil
}

// Shutdown stops dequeuing and waits for in-flight transmissions up to the
// configured grace period, then aborts whatever is still on the wire. Queue
// state is already persisted at every transition, so nothing is lost.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.stopOnce.Do(func() { close(o.quit) })

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(o.cfg.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-done:
		return nil
	case <-grace.C:
	case <-ctx.Done():
	}

	o.logger.Warn().
		Str("func", "Orchestrator.Shutdown").
		Msg("grace period expired, aborting in-flight transmissions")
	if o.sendCancel != nil {
		o.sendCancel()
	}
	<-done
	return ctx.Err()
}

// GetQueueSnapshot returns copies of all queue items in enqueue order.
func (o *Orchestrator) GetQueueSnapshot() []models.OfflineQueueItem {
	return o.queue.Snapshot()
}

// GetMetrics returns the current counter snapshot.
func (o *Orchestrator) GetMetrics() models.SyncMetrics {
	return o.metrics.Snapshot(o.queue.Depth())
}

// ResetMetrics zeroes the counters.
func (o *Orchestrator) ResetMetrics() {
	o.metrics.Reset()
}

// On subscribes handler to sync events of the given type.
func (o *Orchestrator) On(t models.SyncEventType, handler events.Handler) events.Subscription {
	return o.bus.On(t, handler)
}

// Off removes a subscription.
func (o *Orchestrator) Off(t models.SyncEventType, id events.Subscription) {
	o.bus.Off(t, id)
}

// PendingConflicts returns unresolved conflicts ordered by detection time.
func (o *Orchestrator) PendingConflicts() []models.SyncConflict {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.SyncConflict, 0, len(o.conflicts))
	for _, tc := range o.conflicts {
		if !tc.resolved {
			out = append(out, tc.conflict)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out
}

// ResolveManually settles a conflict that required user input.
func (o *Orchestrator) ResolveManually(ctx context.Context, conflictID string, resolution models.ManualResolution) error {
	o.mu.Lock()
	tc, ok := o.conflicts[conflictID]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConflictNotFound, conflictID)
	}

	var (
		winner models.ConflictWinner
		chosen json.RawMessage
	)
	switch resolution.Choice {
	case models.ChoiceKeepClient:
		winner = models.WinnerClient
		chosen = tc.conflict.ClientData
	case models.ChoiceKeepServer:
		winner = models.WinnerServer
	case models.ChoiceMerged:
		if len(resolution.Merged) == 0 {
			return fmt.Errorf("%w: merged choice without a payload", ErrInvalidResolution)
		}
		winner = models.WinnerMerged
		chosen = resolution.Merged
	default:
		return fmt.Errorf("%w: unknown choice %q", ErrInvalidResolution, resolution.Choice)
	}

	return o.settle(ctx, tc, winner, chosen, true)
}

// HandleRemoteChange folds a push notification into local clock state and
// flags queued work that is already known to race the server.
func (o *Orchestrator) HandleRemoteChange(change models.RemoteChange) {
	key := change.Key()
	o.tracker.AdoptRemote(key, change.ServerClock)

	for _, item := range o.queue.Snapshot() {
		if item.Operation.Key() != key || item.Status.Terminal() {
			continue
		}
		if clock.Compare(item.Operation.BaseClock, change.ServerClock) == clock.Concurrent {
			o.logger.Warn().
				Str("func", "Orchestrator.HandleRemoteChange").
				Str("entity", key.String()).
				Str("operation_id", item.Operation.ID).
				Msg("queued operation races a remote change")
			o.emit(models.SyncEvent{
				Type:        models.EventRemoteRace,
				Entity:      key,
				OperationID: item.Operation.ID,
			})
		}
	}

	o.logger.Debug().
		Str("func", "Orchestrator.HandleRemoteChange").
		Str("entity", key.String()).
		Bool("deleted", change.Deleted).
		Msg("adopted remote change")
}

func (o *Orchestrator) dispatchLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(retryScanInterval)
	defer ticker.Stop()

	for {
		o.dispatchReady(ctx)

		select {
		case <-o.quit:
			return
		case <-ctx.Done():
			return
		case <-o.queue.Wake():
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) dispatchReady(ctx context.Context) {
	for _, t := range models.AllEntityTypes() {
		for {
			if !o.breaker.Allow() {
				return
			}

			item, ok, err := o.queue.DequeueNext(ctx, t)
			if err != nil {
				o.breaker.Release()
				o.logger.Error().Err(err).
					Str("func", "Orchestrator.dispatchReady").
					Str("entity_type", string(t)).
					Msg("dequeue failed")
				return
			}
			if !ok {
				o.breaker.Release()
				break
			}

			select {
			case o.jobs <- item:
			case <-o.quit:
				o.breaker.Release()
				return
			case <-ctx.Done():
				o.breaker.Release()
				return
			}
		}
	}
}

func (o *Orchestrator) worker(ctx context.Context) {
	defer o.wg.Done()

	for {
		select {
		case <-o.quit:
			return
		case <-ctx.Done():
			return
		case item := <-o.jobs:
			o.process(ctx, item)
		}
	}
}

func (o *Orchestrator) process(ctx context.Context, item models.OfflineQueueItem) {
	op := item.Operation
	key := op.Key()

	o.emit(models.SyncEvent{
		Type:        models.EventSending,
		Entity:      key,
		OperationID: op.ID,
	})

	start := time.Now()
	result, err := o.transport.Send(ctx, op)
	if err != nil {
		o.handleSendError(ctx, op, err)
		return
	}

	o.breaker.Success()

	if result.Status == adapter.SendConflict {
		o.handleConflict(ctx, op, result)
		return
	}

	o.metrics.ObserveRoundTrip(time.Since(start))
	o.tracker.AdoptRemote(key, result.Ack.ServerClock)

	if err = o.queue.Ack(ctx, op.ID); err != nil {
		o.logger.Error().Err(err).
			Str("func", "Orchestrator.process").
			Str("operation_id", op.ID).
			Msg("ack failed")
		return
	}

	o.metrics.IncCommitted()
	o.emit(models.SyncEvent{
		Type:        models.EventCommitted,
		Entity:      key,
		OperationID: op.ID,
	})

	if result.Ack.Duplicate {
		o.logger.Debug().
			Str("func", "Orchestrator.process").
			Str("operation_id", op.ID).
			Msg("server deduplicated a replayed operation")
	}
}

func (o *Orchestrator) handleSendError(ctx context.Context, op models.SyncOperation, sendErr error) {
	if adapter.IsFatal(sendErr) {
		// A fatal status still proves the server is reachable.
		o.breaker.Success()
		o.discard(ctx, op, "fatal transport error: "+sendErr.Error())
		return
	}

	if opened := o.breaker.Failure(); opened {
		o.logger.Warn().Err(sendErr).
			Str("func", "Orchestrator.handleSendError").
			Msg("circuit breaker opened")
		o.emit(models.SyncEvent{
			Type:  models.EventDegraded,
			Error: sendErr.Error(),
		})
	}

	if op.Attempt >= o.cfg.MaxAttempts {
		o.discard(ctx, op, fmt.Sprintf("gave up after %d attempts: %v", op.Attempt, sendErr))
		return
	}

	delay := o.schedule.Jittered(op.Attempt)
	if err := o.queue.MarkFailed(ctx, op.ID, sendErr, time.Now().Add(delay)); err != nil {
		o.logger.Error().Err(err).
			Str("func", "Orchestrator.handleSendError").
			Str("operation_id", op.ID).
			Msg("failed to schedule retry")
		return
	}

	o.metrics.IncRetries()
	o.logger.Warn().Err(sendErr).
		Str("func", "Orchestrator.handleSendError").
		Str("operation_id", op.ID).
		Int("attempt", op.Attempt).
		Dur("retry_in", delay).
		Msg("transmission failed, retry scheduled")
}

func (o *Orchestrator) handleConflict(ctx context.Context, op models.SyncOperation, result adapter.SendResult) {
	key := op.Key()
	detection := o.detector.Detect(op, result.ServerClock, result.ServerData)

	switch detection.Outcome {
	case OutcomeApply:
		// The clocks say the server should have applied this. Retry with
		// backoff rather than looping hot.
		delay := o.schedule.Jittered(op.Attempt)
		if err := o.queue.MarkFailed(ctx, op.ID, errInconsistentConflict, time.Now().Add(delay)); err != nil {
			o.logger.Error().Err(err).
				Str("func", "Orchestrator.handleConflict").
				Str("operation_id", op.ID).
				Msg("failed to reschedule")
			return
		}
		o.metrics.IncRetries()

	case OutcomeRebase:
		o.tracker.AdoptRemote(key, result.ServerClock)
		if err := o.rebase(ctx, op, detection.MergedClock); err != nil {
			o.logger.Error().Err(err).
				Str("func", "Orchestrator.handleConflict").
				Str("operation_id", op.ID).
				Msg("rebase failed")
			return
		}
		o.logger.Debug().
			Str("func", "Orchestrator.handleConflict").
			Str("operation_id", op.ID).
			Msg("operation rebased onto advanced server history")

	case OutcomeConflict:
		o.metrics.IncConflicts()

		conflict := *detection.Conflict
		analysis, err := o.resolver.Resolve(conflict)
		if err != nil {
			o.logger.Error().Err(err).
				Str("func", "Orchestrator.handleConflict").
				Str("conflict_id", conflict.ID).
				Msg("resolver failed, escalating to manual")
			analysis = models.ConflictAnalysis{
				Strategy:          models.StrategyManual,
				RequiresUserInput: true,
				Winner:            models.WinnerNone,
				DiscardedData:     conflict.ServerData,
			}
		}

		tc := &trackedConflict{conflict: conflict, analysis: analysis}
		o.mu.Lock()
		o.conflicts[conflict.ID] = tc
		o.mu.Unlock()

		if err = o.queue.MarkConflict(ctx, op.ID, "concurrent remote modification"); err != nil {
			o.logger.Error().Err(err).
				Str("func", "Orchestrator.handleConflict").
				Str("operation_id", op.ID).
				Msg("failed to park conflicted operation")
			return
		}

		o.emit(models.SyncEvent{
			Type:        models.EventConflict,
			Entity:      key,
			OperationID: op.ID,
			ConflictID:  conflict.ID,
			Resolution:  &analysis,
		})

		if !analysis.RequiresUserInput {
			if err = o.settle(ctx, tc, analysis.Winner, analysis.MergedData, false); err != nil {
				o.logger.Error().Err(err).
					Str("func", "Orchestrator.handleConflict").
					Str("conflict_id", conflict.ID).
					Msg("automatic resolution failed")
			}
		}
	}
}

// rebase returns a conflicted-in-flight operation to pending with the merged
// clock, unchanged payload.
func (o *Orchestrator) rebase(ctx context.Context, op models.SyncOperation, mergedClock models.VectorClock) error {
	if err := o.queue.MarkConflict(ctx, op.ID, "rebasing onto advanced server history"); err != nil {
		return err
	}
	return o.queue.Requeue(ctx, op.ID, op.Payload, op.BasePayload, mergedClock)
}

// settle applies a resolution verdict: requeue the winning payload, or drop
// the local operation when the server side won.
func (o *Orchestrator) settle(ctx context.Context, tc *trackedConflict, winner models.ConflictWinner, chosen json.RawMessage, manual bool) error {
	o.mu.Lock()
	if tc.resolved {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, tc.conflict.ID)
	}
	tc.resolved = true
	o.mu.Unlock()

	c := tc.conflict
	op := c.Operation
	key := op.Key()

	o.tracker.AdoptRemote(key, c.ServerClock)

	var err error
	switch winner {
	case models.WinnerServer:
		err = o.queue.Discard(ctx, op.ID, "conflict resolved in favour of server state")
		if err == nil {
			o.metrics.IncDiscarded()
			o.emit(models.SyncEvent{
				Type:        models.EventDiscarded,
				Entity:      key,
				OperationID: op.ID,
				ConflictID:  c.ID,
				Error:       "superseded by server state",
			})
		}
	default:
		// The resolved payload goes back out based on the union of both
		// histories, so the server sees it as causally ahead.
		mergedClock := clock.Merge(op.BaseClock, c.ServerClock)
		err = o.queue.Requeue(ctx, op.ID, chosen, c.ServerData, mergedClock)
		if err == nil {
			o.emit(models.SyncEvent{
				Type:        models.EventQueued,
				Entity:      key,
				OperationID: op.ID,
				ConflictID:  c.ID,
			})
		}
	}
	if err != nil {
		o.mu.Lock()
		tc.resolved = false
		o.mu.Unlock()
		return fmt.Errorf("settle conflict %s: %w", c.ID, err)
	}

	o.logger.Info().
		Str("func", "Orchestrator.settle").
		Interface("resolution", models.ConflictResolutionEvent{
			ConflictID: c.ID,
			Entity:     key,
			Analysis:   tc.analysis,
			Chosen:     chosen,
			ResolvedAt: time.Now(),
			Manual:     manual,
		}).
		Msg("conflict resolved")
	return nil
}

func (o *Orchestrator) listenPush(ctx context.Context) {
	defer o.wg.Done()

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.quit:
			cancel()
		case <-pctx.Done():
		}
	}()

	if err := o.push.Listen(pctx, o.HandleRemoteChange); err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Warn().Err(err).
			Str("func", "Orchestrator.listenPush").
			Msg("push listener stopped")
	}
}

func (o *Orchestrator) discard(ctx context.Context, op models.SyncOperation, reason string) {
	if err := o.queue.Discard(ctx, op.ID, reason); err != nil {
		o.logger.Error().Err(err).
			Str("func", "Orchestrator.discard").
			Str("operation_id", op.ID).
			Msg("discard failed")
		return
	}

	o.metrics.IncDiscarded()
	o.emit(models.SyncEvent{
		Type:        models.EventDiscarded,
		Entity:      op.Key(),
		OperationID: op.ID,
		Error:       reason,
	})
	o.logger.Warn().
		Str("func", "Orchestrator.discard").
		Str("operation_id", op.ID).
		Str("reason", reason).
		Msg("operation discarded")
}

func (o *Orchestrator) emit(event models.SyncEvent) {
	event.At = time.Now()
	o.bus.Emit(event)
}
