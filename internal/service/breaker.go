// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "halfOpen"
	default:
		return "unknown"
	}
}

// circuitBreaker trips after a run of consecutive transport failures so the
// engine stops hammering an unreachable server. After the cooldown it
// half-opens and lets exactly one probe through; the probe's verdict closes
// or re-opens it before anyone else may dispatch.
type circuitBreaker struct {
	threshold int
	cooldown  time.Duration

	now func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	probing  bool
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a transmission may go out right now. In half-open it
// grants a single probe slot; the caller must settle it with Success or
// Failure, or hand it back with Release if no send happens.
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
		b.probing = true
		return true
	case breakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// Release returns an unused half-open probe slot so another caller can take
// it. A no-op outside half-open.
func (b *circuitBreaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.probing = false
	}
}

// Success records a successful round trip and closes the breaker.
func (b *circuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = breakerClosed
	b.failures = 0
	b.probing = false
}

// Failure records a transport failure. Returns true when this failure opened
// (or re-opened) the breaker.
func (b *circuitBreaker) Failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.state = breakerOpen
		b.openedAt = b.now()
		b.probing = false
		return true
	}

	b.failures++
	if b.state == breakerClosed && b.failures >= b.threshold {
		b.state = breakerOpen
		b.openedAt = b.now()
		return true
	}
	return false
}

// State returns the current state name for logging and snapshots.
func (b *circuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state.String()
}
