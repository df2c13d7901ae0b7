// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := newCircuitBreaker(3, time.Minute)

	assert.True(t, b.Allow())
	assert.False(t, b.Failure())
	assert.False(t, b.Failure())
	assert.True(t, b.Failure(), "third consecutive failure trips the breaker")

	assert.False(t, b.Allow())
	assert.Equal(t, "open", b.State())
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	b := newCircuitBreaker(2, time.Minute)

	assert.False(t, b.Failure())
	b.Success()
	assert.False(t, b.Failure(), "the run restarts after a success")
	assert.Equal(t, "closed", b.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	b := newCircuitBreaker(1, 30*time.Second)

	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	assert.True(t, b.Failure())
	assert.False(t, b.Allow())

	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow(), "cooldown elapsed, probe allowed")
	assert.Equal(t, "halfOpen", b.State())

	b.Success()
	assert.Equal(t, "closed", b.State())
	assert.True(t, b.Allow())
}

func TestCircuitBreaker_HalfOpenAdmitsSingleProbe(t *testing.T) {
	b := newCircuitBreaker(1, 30*time.Second)

	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	assert.True(t, b.Failure())
	now = now.Add(31 * time.Second)

	assert.True(t, b.Allow(), "first caller takes the probe slot")
	for i := 0; i < 4; i++ {
		assert.False(t, b.Allow(), "no further dispatch until the probe settles")
	}

	b.Success()
	assert.True(t, b.Allow(), "verdict landed, traffic resumes")
}

func TestCircuitBreaker_ReleaseReturnsProbeSlot(t *testing.T) {
	b := newCircuitBreaker(1, 30*time.Second)

	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	assert.True(t, b.Failure())
	now = now.Add(time.Minute)

	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	// the holder found nothing to send; the slot goes back
	b.Release()
	assert.True(t, b.Allow())
	assert.Equal(t, "halfOpen", b.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b := newCircuitBreaker(1, 30*time.Second)

	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	assert.True(t, b.Failure())
	now = now.Add(time.Minute)
	assert.True(t, b.Allow())

	assert.True(t, b.Failure(), "failed probe re-opens")
	assert.False(t, b.Allow(), "cooldown restarts from the failed probe")
	assert.Equal(t, "open", b.State())
}
