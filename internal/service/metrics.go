// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vpanarin/wealthkeeper/models"
)

// Metrics accumulates the orchestrator's lifetime counters. Counters are
// updated from worker goroutines and read from the UI thread, so everything
// is atomic or mutex-guarded.
type Metrics struct {
	queued    atomic.Int64
	committed atomic.Int64
	conflicts atomic.Int64
	retries   atomic.Int64
	discarded atomic.Int64

	mu       sync.Mutex
	rttTotal time.Duration
	rttCount int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncQueued()    { m.queued.Add(1) }
func (m *Metrics) IncCommitted() { m.committed.Add(1) }
func (m *Metrics) IncConflicts() { m.conflicts.Add(1) }
func (m *Metrics) IncRetries()   { m.retries.Add(1) }
func (m *Metrics) IncDiscarded() { m.discarded.Add(1) }

// ObserveRoundTrip folds one successful transport round trip into the
// rolling average.
func (m *Metrics) ObserveRoundTrip(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rttTotal += d
	m.rttCount++
}

// Snapshot returns the current counter values together with the given live
// queue depth.
func (m *Metrics) Snapshot(queueDepth int) models.SyncMetrics {
	m.mu.Lock()
	var avg time.Duration
	if m.rttCount > 0 {
		avg = m.rttTotal / time.Duration(m.rttCount)
	}
	m.mu.Unlock()

	return models.SyncMetrics{
		Queued:       m.queued.Load(),
		Committed:    m.committed.Load(),
		Conflicts:    m.conflicts.Load(),
		Retries:      m.retries.Load(),
		Discarded:    m.discarded.Load(),
		QueueDepth:   queueDepth,
		AvgRoundTrip: avg,
	}
}

// Reset zeroes all counters and the round-trip average.
func (m *Metrics) Reset() {
	m.queued.Store(0)
	m.committed.Store(0)
	m.conflicts.Store(0)
	m.retries.Store(0)
	m.discarded.Store(0)

	m.mu.Lock()
	m.rttTotal = 0
	m.rttCount = 0
	m.mu.Unlock()
}
