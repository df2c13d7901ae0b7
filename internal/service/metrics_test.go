// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountersAndAverage(t *testing.T) {
	m := NewMetrics()

	m.IncQueued()
	m.IncQueued()
	m.IncCommitted()
	m.IncConflicts()
	m.IncRetries()
	m.IncDiscarded()
	m.ObserveRoundTrip(100 * time.Millisecond)
	m.ObserveRoundTrip(300 * time.Millisecond)

	snap := m.Snapshot(7)
	assert.Equal(t, int64(2), snap.Queued)
	assert.Equal(t, int64(1), snap.Committed)
	assert.Equal(t, int64(1), snap.Conflicts)
	assert.Equal(t, int64(1), snap.Retries)
	assert.Equal(t, int64(1), snap.Discarded)
	assert.Equal(t, 7, snap.QueueDepth)
	assert.Equal(t, 200*time.Millisecond, snap.AvgRoundTrip)
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.IncQueued()
	m.ObserveRoundTrip(time.Second)
	m.Reset()

	snap := m.Snapshot(0)
	assert.Zero(t, snap.Queued)
	assert.Zero(t, snap.AvgRoundTrip)
}

func TestMetrics_ConcurrentUpdates(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncCommitted()
				m.ObserveRoundTrip(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot(0)
	assert.Equal(t, int64(800), snap.Committed)
	assert.Equal(t, time.Millisecond, snap.AvgRoundTrip)
}
