// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

// VectorClock maps a replica (device) identifier to a monotonically
// increasing counter. A replica only ever increments its own component.
// An absent component is read as zero.
//
// Comparison and merge semantics live in the clock package; the type itself
// stays a plain map so it serializes naturally inside sync operations.
type VectorClock map[string]int64

// Counter returns the component for replicaID, zero when absent.
func (c VectorClock) Counter(replicaID string) int64 {
	return c[replicaID]
}

// Clone returns an independent copy of the clock. A nil clock clones to an
// empty, non-nil clock so callers can mutate the result safely.
func (c VectorClock) Clone() VectorClock {
	out := make(VectorClock, len(c))
	for replica, counter := range c {
		out[replica] = counter
	}
	return out
}
