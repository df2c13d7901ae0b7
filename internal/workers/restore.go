// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package workers

import (
	"context"
	"fmt"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/queue"
	"github.com/vpanarin/wealthkeeper/internal/store"
)

type queueRestorer struct {
	durable store.DurableQueueStore
	queue   queue.SyncQueue
	logger  *logger.Logger
}

// NewQueueRestorer returns a worker that rebuilds the sync queue from the
// durable store. It must run before the orchestrator starts.
func NewQueueRestorer(durable store.DurableQueueStore, q queue.SyncQueue, log *logger.Logger) Worker {
	return &queueRestorer{durable: durable, queue: q, logger: log}
}

func (w *queueRestorer) Run(ctx context.Context) error {
	items, quarantined, err := w.durable.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load persisted queue: %w", err)
	}

	if quarantined > 0 {
		w.logger.Warn().
			Str("func", "queueRestorer.Run").
			Int("rows", quarantined).
			Msg("quarantined unreadable queue rows")
	}

	if err = w.queue.Restore(ctx, items); err != nil {
		return fmt.Errorf("restore queue: %w", err)
	}

	w.logger.Info().
		Str("func", "queueRestorer.Run").
		Int("items", len(items)).
		Msg("sync queue restored")
	return nil
}
