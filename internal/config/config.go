// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// wealthkeeper client. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the replica identifier
	// used in vector clocks and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the local durable queue database.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds network settings for the remote store transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Sync holds orchestrator tunables: worker pool size, retry policy and
	// circuit breaker behaviour.
	Sync Sync `envPrefix:"SYNC_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// ReplicaID is the stable identifier of this device in vector clocks.
	// A replica only ever increments its own clock component, so the value
	// must be unique per installation and must not change between runs.
	// Env: APP_REPLICA_ID
	ReplicaID string `env:"REPLICA_ID"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for the local persistence backends.
type Storage struct {
	// DB holds the local queue database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local sqlite queue database.
type DB struct {
	// DSN is the sqlite file path holding the durable sync queue
	// (e.g. "~/.wealthkeeper/queue.db").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds network settings for the remote store transport layer.
type Adapter struct {
	// HTTPAddress is the remote store endpoint for operation dispatch,
	// in "host:port" or full URL form.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// WSAddress is the websocket endpoint of the real-time channel that
	// delivers remote change notifications. Empty disables the push channel.
	// Env: ADAPTER_WS_ADDRESS
	WSAddress string `env:"WS_ADDRESS"`

	// RequestTimeout is the per-request timeout for outbound transport calls
	// (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// AuthToken is the bearer token attached to transport requests. Obtained
	// out of band; authentication itself is outside the sync engine.
	// Env: ADAPTER_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Sync holds orchestrator tunables. Zero fields fall back to the engine
// defaults (concurrency 4, 8 attempts, 1s base backoff capped at 5m).
type Sync struct {
	// Concurrency bounds the orchestrator worker pool.
	// Env: SYNC_CONCURRENCY
	Concurrency int `env:"CONCURRENCY"`

	// MaxAttempts is the transmission attempt budget per operation.
	// Env: SYNC_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BackoffBase is the first retry delay of the exponential schedule.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap is the upper bound on retry delays.
	// Env: SYNC_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// BreakerThreshold is the consecutive transport failure count that opens
	// the circuit breaker.
	// Env: SYNC_BREAKER_THRESHOLD
	BreakerThreshold int `env:"BREAKER_THRESHOLD"`

	// BreakerCooldown is how long the breaker stays open before probing.
	// Env: SYNC_BREAKER_COOLDOWN
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN"`

	// ShutdownGrace bounds how long shutdown waits for in-flight calls.
	// Env: SYNC_SHUTDOWN_GRACE
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
