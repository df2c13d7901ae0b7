// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package workers

import "context"

// Workers runs a sequence of workers in registration order. Order matters:
// the queue must be restored from disk before the orchestrator starts
// draining it.
type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker in order, stopping at the first failure.
func (w *Workers) Run(ctx context.Context) error {
	for _, worker := range w.workers {
		if err := worker.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
