// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package clock implements vector clock arithmetic for per-entity causality
// tracking, plus a Tracker that owns the authoritative local clock state.
//
// All functions are pure and total: they never touch I/O and cannot fail.
// An absent clock component is treated as zero everywhere.
package clock

import "github.com/vpanarin/wealthkeeper/models"

// Ordering is the result of comparing two vector clocks.
type Ordering int

const (
	// Equal means every component matches.
	Equal Ordering = iota
	// Before means a happens-before b: every component of a is ≤ the
	// corresponding component of b and at least one is strictly less.
	Before
	// After means b happens-before a.
	After
	// Concurrent means neither clock happens-before the other.
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "equal"
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// Increment returns a copy of c with replicaID's component bumped by one.
// The input clock is not mutated.
func Increment(c models.VectorClock, replicaID string) models.VectorClock {
	out := c.Clone()
	out[replicaID]++
	return out
}

// Merge returns the componentwise maximum of a and b. Used after adopting
// server state so the local clock covers both histories.
func Merge(a, b models.VectorClock) models.VectorClock {
	out := a.Clone()
	for replica, counter := range b {
		if counter > out[replica] {
			out[replica] = counter
		}
	}
	return out
}

// Compare determines the causal ordering between a and b by pointwise
// comparison over the union of their components.
func Compare(a, b models.VectorClock) Ordering {
	var less, greater bool

	for replica, av := range a {
		bv := b[replica]
		if av < bv {
			less = true
		} else if av > bv {
			greater = true
		}
	}
	for replica, bv := range b {
		if _, seen := a[replica]; seen {
			continue
		}
		if bv > 0 {
			less = true
		}
	}

	switch {
	case less && greater:
		return Concurrent
	case less:
		return Before
	case greater:
		return After
	default:
		return Equal
	}
}
