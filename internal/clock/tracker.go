// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package clock

import (
	"sync"

	"github.com/vpanarin/wealthkeeper/models"
)

// Tracker owns the authoritative local vector clock for every known entity.
// It is the single writer of local clock state: a clock advances either
// because this replica made a local mutation (BumpLocal) or because the
// engine adopted server state (AdoptRemote).
type Tracker struct {
	replicaID string

	mu     sync.RWMutex
	clocks map[models.EntityKey]models.VectorClock
}

// NewTracker constructs a Tracker for the given replica (device) identifier.
func NewTracker(replicaID string) *Tracker {
	return &Tracker{
		replicaID: replicaID,
		clocks:    make(map[models.EntityKey]models.VectorClock),
	}
}

// ReplicaID returns the identifier this tracker increments on local
// mutations.
func (t *Tracker) ReplicaID() string {
	return t.replicaID
}

// BumpLocal increments this replica's component for the entity and returns a
// snapshot of the updated clock, suitable for stamping onto a new operation.
func (t *Tracker) BumpLocal(key models.EntityKey) models.VectorClock {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Increment(t.clocks[key], t.replicaID)
	t.clocks[key] = next
	return next.Clone()
}

// AdoptRemote merges a server-reported clock into the entity's local clock
// and returns a snapshot of the result.
func (t *Tracker) AdoptRemote(key models.EntityKey, remote models.VectorClock) models.VectorClock {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := Merge(t.clocks[key], remote)
	t.clocks[key] = merged
	return merged.Clone()
}

// Snapshot returns a copy of the entity's current clock. Unknown entities
// yield an empty clock.
func (t *Tracker) Snapshot(key models.EntityKey) models.VectorClock {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.clocks[key].Clone()
}
