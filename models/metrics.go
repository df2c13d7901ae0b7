// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import "time"

// SyncMetrics is a read-only snapshot of the orchestrator's process-lifetime
// counters. Counters reset only on explicit operator action, never
// implicitly.
type SyncMetrics struct {
	// Queued counts operations accepted into the queue.
	Queued int64 `json:"queued"`

	// Committed counts operations acknowledged by the remote store.
	Committed int64 `json:"committed"`

	// Conflicts counts concurrency conflicts detected.
	Conflicts int64 `json:"conflicts"`

	// Retries counts failed transmissions rescheduled with backoff.
	Retries int64 `json:"retries"`

	// Discarded counts operations dropped after exhausting attempts or
	// hitting a fatal transport error. Discarded work stays visible in the
	// queue snapshot; the counter only tracks the transition.
	Discarded int64 `json:"discarded"`

	// QueueDepth is the number of live (non-terminal) items at snapshot time.
	QueueDepth int `json:"queue_depth"`

	// AvgRoundTrip is the rolling average transport round-trip latency.
	AvgRoundTrip time.Duration `json:"avg_round_trip"`
}
