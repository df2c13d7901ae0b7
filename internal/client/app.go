// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vpanarin/wealthkeeper/internal/adapter"
	"github.com/vpanarin/wealthkeeper/internal/clock"
	"github.com/vpanarin/wealthkeeper/internal/config"
	"github.com/vpanarin/wealthkeeper/internal/events"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/queue"
	"github.com/vpanarin/wealthkeeper/internal/service"
	"github.com/vpanarin/wealthkeeper/internal/store"
	"github.com/vpanarin/wealthkeeper/internal/workers"
)

// shutdownSlack is added on top of the orchestrator's own grace period so
// Shutdown can finish persisting before the outer context expires.
const shutdownSlack = 5 * time.Second

// App owns the client process: storage, queue, transport, orchestrator.
type App struct {
	cfg    *config.ClientConfig
	logger *logger.Logger

	durable      store.DurableQueueStore
	orchestrator *service.Orchestrator
	workers      *workers.Workers
}

// NewApp wires the sync engine together from the given configuration.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	durable, err := store.NewSQLiteQueueStore(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("create durable queue store: %w", err)
	}

	transport, err := adapter.NewHTTPTransportAdapter(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create transport adapter: %w", err)
	}

	var push adapter.PushChannel
	if cfg.Adapter.WSAddress != "" {
		push, err = adapter.NewWebsocketPushChannel(cfg.Adapter, log)
		if err != nil {
			return nil, fmt.Errorf("create push channel: %w", err)
		}
	}

	q := queue.NewSyncQueue(durable, log)
	tracker := clock.NewTracker(cfg.App.ReplicaID)
	bus := events.NewBus(log)
	orchestrator := service.NewOrchestrator(cfg.Sync, q, transport, push, tracker, bus, log)

	return &App{
		cfg:          cfg,
		logger:       log,
		durable:      durable,
		orchestrator: orchestrator,
		workers: workers.NewWorkers(
			workers.NewQueueRestorer(durable, q, log),
			workers.NewSyncRunner(orchestrator),
		),
	}, nil
}

// Sync exposes the orchestrator for embedding callers (UI layers, tests).
func (a *App) Sync() *service.Orchestrator {
	return a.orchestrator
}

// Run restores the queue, starts synchronization and blocks until the
// process receives an interrupt, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.workers.Run(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	a.logger.Info().
		Str("func", "App.Run").
		Str("replica_id", a.cfg.App.ReplicaID).
		Msg("wealthkeeper sync client running")

	<-ctx.Done()
	stop()

	a.logger.Info().Str("func", "App.Run").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Sync.ShutdownGrace+shutdownSlack)
	defer cancel()

	if err := a.orchestrator.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn().Err(err).Str("func", "App.Run").Msg("orchestrator shutdown incomplete")
	}
	if err := a.durable.Close(); err != nil {
		a.logger.Warn().Err(err).Str("func", "App.Run").Msg("closing durable store")
	}

	return nil
}
