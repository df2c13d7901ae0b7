// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import "time"

// AutoSyncConfig carries the orchestrator tunables: worker pool size, retry
// policy and circuit breaker behaviour. Zero fields are replaced with the
// defaults below via Normalize.
type AutoSyncConfig struct {
	// Concurrency bounds the worker pool. Entities are processed strictly
	// sequentially within one entity key, concurrently across keys up to
	// this limit.
	Concurrency int `json:"concurrency"`

	// MaxAttempts is the transmission attempt budget per operation before it
	// is discarded and surfaced to the user.
	MaxAttempts int `json:"max_attempts"`

	// BackoffBase and BackoffCap shape the exponential retry schedule.
	// Delays grow from BackoffBase, cap at BackoffCap, and get full jitter.
	BackoffBase time.Duration `json:"backoff_base"`
	BackoffCap  time.Duration `json:"backoff_cap"`

	// BreakerThreshold is the count of consecutive transport failures across
	// all entities that opens the circuit breaker.
	BreakerThreshold int `json:"breaker_threshold"`

	// BreakerCooldown is how long the breaker stays open before half-opening
	// to probe with a single operation.
	BreakerCooldown time.Duration `json:"breaker_cooldown"`

	// ShutdownGrace bounds how long Shutdown waits for in-flight transport
	// calls before persisting state and exiting.
	ShutdownGrace time.Duration `json:"shutdown_grace"`
}

// DefaultAutoSyncConfig returns the stock tunables.
func DefaultAutoSyncConfig() AutoSyncConfig {
	return AutoSyncConfig{
		Concurrency:      4,
		MaxAttempts:      8,
		BackoffBase:      time.Second,
		BackoffCap:       5 * time.Minute,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
		ShutdownGrace:    10 * time.Second,
	}
}

// Normalize replaces unset fields with defaults and returns the result.
func (c AutoSyncConfig) Normalize() AutoSyncConfig {
	def := DefaultAutoSyncConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = def.BackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = def.BackoffCap
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = def.BreakerThreshold
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = def.BreakerCooldown
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = def.ShutdownGrace
	}
	return c
}
