// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"math/rand"
	"time"

	"github.com/sethvargo/go-retry"
)

// Schedule computes retry delays for failed transmissions: exponential growth
// from Base, capped at Cap.
type Schedule struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns the deterministic delay for the given attempt number
// (1-based): Base, 2*Base, 4*Base, ... capped at Cap.
func (s Schedule) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	b := retry.WithCappedDuration(s.Cap, retry.NewExponential(s.Base))

	var d time.Duration
	for i := 0; i < attempt; i++ {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}
	return d
}

// Jittered returns the delay for the attempt with full jitter applied:
// uniform in [0, Delay(attempt)]. Jitter spreads reconnecting clients out
// after a shared outage.
func (s Schedule) Jittered(attempt int) time.Duration {
	d := s.Delay(attempt)
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
