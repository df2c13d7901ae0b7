// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a remote store address in format [host]:[port] or full URL
//	-ws-address real-time channel websocket address
//	-d local queue database path
//	-replica-id stable device identifier for vector clocks
//	-c/-config json file path with configs
//	-request-timeout transport request timeout (e.g., "30s", "1m")
//	-sync-concurrency orchestrator worker pool size
//	-sync-max-attempts per-operation transmission attempt budget
//	-sync-backoff-base first retry delay (e.g., "1s")
//	-sync-backoff-cap retry delay upper bound (e.g., "5m")
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var wsAddress string
	var databaseDSN string
	var replicaID string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var syncConcurrency int
	var syncMaxAttempts int
	var syncBackoffBase time.Duration
	var syncBackoffCap time.Duration

	flag.StringVar(&serverAddress, "a", "", "Remote store address host:port or URL")
	flag.StringVar(&wsAddress, "ws-address", "", "Real-time channel websocket address")
	flag.StringVar(&databaseDSN, "d", "", "Local queue database path")
	flag.StringVar(&replicaID, "replica-id", "", "Stable device identifier")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Transport request timeout (e.g., 30s, 1m)")
	flag.IntVar(&syncConcurrency, "sync-concurrency", 0, "Orchestrator worker pool size")
	flag.IntVar(&syncMaxAttempts, "sync-max-attempts", 0, "Per-operation attempt budget")
	flag.DurationVar(&syncBackoffBase, "sync-backoff-base", 0, "First retry delay (e.g., 1s)")
	flag.DurationVar(&syncBackoffCap, "sync-backoff-cap", 0, "Retry delay upper bound (e.g., 5m)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			ReplicaID: replicaID,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Adapter: Adapter{
			HTTPAddress:    serverAddress,
			WSAddress:      wsAddress,
			RequestTimeout: requestTimeout,
		},
		Sync: Sync{
			Concurrency: syncConcurrency,
			MaxAttempts: syncMaxAttempts,
			BackoffBase: syncBackoffBase,
			BackoffCap:  syncBackoffCap,
		},
		JSONFilePath: jsonConfigPath,
	}
}
