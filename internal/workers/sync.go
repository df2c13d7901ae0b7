// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package workers

import (
	"context"

	"github.com/vpanarin/wealthkeeper/internal/service"
)

type syncRunner struct {
	orchestrator *service.Orchestrator
}

// NewSyncRunner returns a worker that starts the sync orchestrator. The
// orchestrator keeps running in the background until it is shut down.
func NewSyncRunner(orchestrator *service.Orchestrator) Worker {
	return &syncRunner{orchestrator: orchestrator}
}

func (w *syncRunner) Run(ctx context.Context) error {
	return w.orchestrator.Run(ctx)
}
