// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vpanarin/wealthkeeper/internal/adapter"
	"github.com/vpanarin/wealthkeeper/internal/clock"
	"github.com/vpanarin/wealthkeeper/internal/events"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/mock"
	"github.com/vpanarin/wealthkeeper/internal/queue"
	"github.com/vpanarin/wealthkeeper/internal/store"
	"github.com/vpanarin/wealthkeeper/models"
)

func testSyncConfig() models.AutoSyncConfig {
	return models.AutoSyncConfig{
		Concurrency:      2,
		MaxAttempts:      5,
		BackoffBase:      time.Millisecond,
		BackoffCap:       5 * time.Millisecond,
		BreakerThreshold: 100,
		BreakerCooldown:  time.Millisecond,
		ShutdownGrace:    2 * time.Second,
	}
}

func newTestOrchestrator(t *testing.T, cfg models.AutoSyncConfig) (*Orchestrator, *mock.MockTransportAdapter) {
	t.Helper()

	ctrl := gomock.NewController(t)
	transport := mock.NewMockTransportAdapter(ctrl)
	q := queue.NewSyncQueue(store.NewMemoryQueueStore(), logger.Nop())
	bus := events.NewBus(logger.Nop())
	tracker := clock.NewTracker("device-1")

	return NewOrchestrator(cfg, q, transport, nil, tracker, bus, logger.Nop()), transport
}

func captureEvents(o *Orchestrator, t models.SyncEventType) <-chan models.SyncEvent {
	ch := make(chan models.SyncEvent, 32)
	o.On(t, func(e models.SyncEvent) { ch <- e })
	return ch
}

func waitEvent(t *testing.T, ch <-chan models.SyncEvent, timeout time.Duration) models.SyncEvent {
	t.Helper()

	select {
	case e := <-ch:
		return e
	case <-time.After(timeout):
		t.Fatal("timed out waiting for sync event")
		return models.SyncEvent{}
	}
}

func ackFor(op models.SyncOperation) adapter.SendResult {
	return adapter.SendResult{
		Status: adapter.SendAcked,
		Ack: models.SocketAck{
			OperationID: op.ID,
			Applied:     true,
			ServerClock: op.BaseClock.Clone(),
		},
	}
}

func TestOrchestrator_CommitsQueuedOperations(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.SyncOperation) (adapter.SendResult, error) {
			return ackFor(op), nil
		}).
		Times(3)

	committed := captureEvents(o, models.EventCommitted)

	for i := 1; i <= 3; i++ {
		_, err := o.EnqueueLocalChange(ctx,
			models.EntityTransaction, fmt.Sprintf("t%d", i),
			models.OpCreate, json.RawMessage(`{"amount":"10"}`), nil)
		require.NoError(t, err)
	}

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		e := waitEvent(t, committed, 3*time.Second)
		seen[e.Entity.ID] = true
	}
	assert.Len(t, seen, 3)

	assert.Eventually(t, func() bool {
		m := o.GetMetrics()
		return m.Committed == 3 && m.QueueDepth == 0
	}, 3*time.Second, 10*time.Millisecond)

	m := o.GetMetrics()
	assert.Equal(t, int64(3), m.Queued)
	assert.Greater(t, m.AvgRoundTrip, time.Duration(0))
}

func TestOrchestrator_TransientFailureRetriesThenCommits(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	gomock.InOrder(
		transport.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			Return(adapter.SendResult{}, fmt.Errorf("%w: connection reset", adapter.ErrTransport)),
		transport.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, op models.SyncOperation) (adapter.SendResult, error) {
				return ackFor(op), nil
			}),
	)

	committed := captureEvents(o, models.EventCommitted)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityAccount, "a1", models.OpCreate, json.RawMessage(`{"name":"cash"}`), nil)
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	waitEvent(t, committed, 5*time.Second)

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m.Retries)
	assert.Equal(t, int64(1), m.Committed)
}

func TestOrchestrator_FatalErrorDiscardsImmediately(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(adapter.SendResult{}, fmt.Errorf("%w: token expired", adapter.ErrUnauthorized))

	discarded := captureEvents(o, models.EventDiscarded)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityBudget, "b1", models.OpCreate, json.RawMessage(`{"limit":"100"}`), nil)
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	e := waitEvent(t, discarded, 3*time.Second)
	assert.Contains(t, e.Error, "fatal transport error")

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m.Discarded)
	assert.Zero(t, m.Retries, "fatal errors are not retried")

	snapshot := o.GetQueueSnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, models.StatusDiscarded, snapshot[0].Status, "discarded work stays visible")
}

func TestOrchestrator_RetryBudgetExhausted(t *testing.T) {
	cfg := testSyncConfig()
	cfg.MaxAttempts = 2

	o, transport := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(adapter.SendResult{}, fmt.Errorf("%w: 502", adapter.ErrBadGateway)).
		Times(2)

	discarded := captureEvents(o, models.EventDiscarded)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityGoal, "g1", models.OpCreate, json.RawMessage(`{"name":"x"}`), nil)
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	e := waitEvent(t, discarded, 5*time.Second)
	assert.Contains(t, e.Error, "gave up after 2 attempts")

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m.Retries)
	assert.Equal(t, int64(1), m.Discarded)
}

func TestOrchestrator_BreakerOpensAndEmitsDegraded(t *testing.T) {
	cfg := testSyncConfig()
	cfg.BreakerThreshold = 2
	cfg.BreakerCooldown = time.Hour

	o, transport := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(adapter.SendResult{}, fmt.Errorf("%w: refused", adapter.ErrTransport)).
		Times(2)

	degraded := captureEvents(o, models.EventDegraded)

	for i := 1; i <= 2; i++ {
		_, err := o.EnqueueLocalChange(ctx,
			models.EntityTransaction, fmt.Sprintf("t%d", i),
			models.OpCreate, json.RawMessage(`{"amount":"1"}`), nil)
		require.NoError(t, err)
	}

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	e := waitEvent(t, degraded, 3*time.Second)
	assert.NotEmpty(t, e.Error)

	// both operations failed once, then the open breaker stopped dispatch
	assert.Eventually(t, func() bool {
		return o.GetMetrics().Retries == 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestOrchestrator_AutoMergesDisjointConflict(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	serverClock := models.VectorClock{"device-2": 5}
	serverData := json.RawMessage(`{"amount":"40","payee":"amazon"}`)

	gomock.InOrder(
		transport.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			Return(adapter.SendResult{
				Status:      adapter.SendConflict,
				ServerClock: serverClock,
				ServerData:  serverData,
			}, nil),
		transport.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, op models.SyncOperation) (adapter.SendResult, error) {
				assert.JSONEq(t, `{"amount":"40","payee":"amazon","notes":"lunch"}`, string(op.Payload))
				assert.JSONEq(t, string(serverData), string(op.BasePayload))
				assert.Equal(t, models.VectorClock{"device-1": 1, "device-2": 5}, op.BaseClock)
				return ackFor(op), nil
			}),
	)

	committed := captureEvents(o, models.EventCommitted)
	conflicts := captureEvents(o, models.EventConflict)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityTransaction, "t1", models.OpUpdate,
		json.RawMessage(`{"amount":"40","notes":"lunch"}`),
		json.RawMessage(`{"amount":"40"}`))
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	conflictEvent := waitEvent(t, conflicts, 3*time.Second)
	require.NotNil(t, conflictEvent.Resolution)
	assert.Equal(t, models.StrategyFieldMerge, conflictEvent.Resolution.Strategy)
	assert.False(t, conflictEvent.Resolution.RequiresUserInput)

	waitEvent(t, committed, 5*time.Second)

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m.Conflicts)
	assert.Equal(t, int64(1), m.Committed)
	assert.Empty(t, o.PendingConflicts())
}

func TestOrchestrator_ManualConflictLifecycle(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(adapter.SendResult{
			Status:      adapter.SendConflict,
			ServerClock: models.VectorClock{"device-2": 3},
			ServerData:  json.RawMessage(`{"amount":"60"}`),
		}, nil)

	conflicts := captureEvents(o, models.EventConflict)
	discarded := captureEvents(o, models.EventDiscarded)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityTransaction, "t1", models.OpUpdate,
		json.RawMessage(`{"amount":"50"}`),
		json.RawMessage(`{"amount":"40"}`))
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	conflictEvent := waitEvent(t, conflicts, 3*time.Second)
	require.NotNil(t, conflictEvent.Resolution)
	assert.True(t, conflictEvent.Resolution.RequiresUserInput, "both sides changed the amount")
	assert.Equal(t, []string{"amount"}, conflictEvent.Resolution.ConflictingFields)

	pending := o.PendingConflicts()
	require.Len(t, pending, 1)
	conflictID := pending[0].ID
	assert.Equal(t, conflictEvent.ConflictID, conflictID)

	err = o.ResolveManually(ctx, "no-such-conflict", models.ManualResolution{Choice: models.ChoiceKeepServer})
	assert.ErrorIs(t, err, ErrConflictNotFound)

	err = o.ResolveManually(ctx, conflictID, models.ManualResolution{Choice: models.ChoiceMerged})
	assert.ErrorIs(t, err, ErrInvalidResolution, "merged choice needs a payload")

	require.NoError(t, o.ResolveManually(ctx, conflictID, models.ManualResolution{Choice: models.ChoiceKeepServer}))

	err = o.ResolveManually(ctx, conflictID, models.ManualResolution{Choice: models.ChoiceKeepServer})
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	waitEvent(t, discarded, 3*time.Second)
	assert.Empty(t, o.PendingConflicts())

	snapshot := o.GetQueueSnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, models.StatusDiscarded, snapshot[0].Status)
}

func TestOrchestrator_DuplicateAckCommits(t *testing.T) {
	o, transport := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	transport.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.SyncOperation) (adapter.SendResult, error) {
			res := ackFor(op)
			res.Ack.Applied = false
			res.Ack.Duplicate = true
			return res, nil
		})

	committed := captureEvents(o, models.EventCommitted)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityAccount, "a1", models.OpUpdate,
		json.RawMessage(`{"name":"wallet"}`), json.RawMessage(`{"name":"cash"}`))
	require.NoError(t, err)

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	waitEvent(t, committed, 3*time.Second)
	assert.Equal(t, int64(1), o.GetMetrics().Committed)
}

func TestOrchestrator_DeleteCancellingCreateEmitsDiscarded(t *testing.T) {
	o, _ := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	discarded := captureEvents(o, models.EventDiscarded)

	_, err := o.EnqueueLocalChange(ctx,
		models.EntityGoal, "g1", models.OpCreate, json.RawMessage(`{"name":"x"}`), nil)
	require.NoError(t, err)

	item, err := o.EnqueueLocalChange(ctx,
		models.EntityGoal, "g1", models.OpDelete, nil, json.RawMessage(`{"name":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDiscarded, item.Status)

	waitEvent(t, discarded, time.Second)
	assert.Empty(t, o.GetQueueSnapshot())
	assert.Equal(t, int64(1), o.GetMetrics().Queued, "only the create was ever queued")
}

func TestOrchestrator_RemoteChangeRaceEmitsEvent(t *testing.T) {
	o, _ := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	races := captureEvents(o, models.EventRemoteRace)

	item, err := o.EnqueueLocalChange(ctx,
		models.EntityTransaction, "t1", models.OpUpdate,
		json.RawMessage(`{"amount":"50"}`), json.RawMessage(`{"amount":"40"}`))
	require.NoError(t, err)

	o.HandleRemoteChange(models.RemoteChange{
		EntityType:  models.EntityTransaction,
		EntityID:    "t1",
		ServerClock: models.VectorClock{"device-2": 4},
	})

	e := waitEvent(t, races, time.Second)
	assert.Equal(t, item.Operation.ID, e.OperationID)
	assert.Equal(t, models.EntityKey{Type: models.EntityTransaction, ID: "t1"}, e.Entity)

	// a change for an entity with no queued work is not a race
	o.HandleRemoteChange(models.RemoteChange{
		EntityType:  models.EntityTransaction,
		EntityID:    "t2",
		ServerClock: models.VectorClock{"device-2": 5},
	})
	select {
	case e := <-races:
		t.Fatalf("unexpected race event for %q", e.Entity.ID)
	default:
	}
}

func TestOrchestrator_RunTwiceRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t, testSyncConfig())
	ctx := context.Background()

	require.NoError(t, o.Run(ctx))
	defer o.Shutdown(context.Background())

	assert.ErrorIs(t, o.Run(ctx), ErrAlreadyRunning)
}

func TestOrchestrator_ShutdownIsIdempotent(t *testing.T) {
	o, _ := newTestOrchestrator(t, testSyncConfig())

	require.NoError(t, o.Run(context.Background()))
	require.NoError(t, o.Shutdown(context.Background()))
	require.NoError(t, o.Shutdown(context.Background()))
}
