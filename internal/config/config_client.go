// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

import (
	"fmt"
	"time"

	"github.com/vpanarin/wealthkeeper/models"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// ReplicaID is this device's identifier in vector clocks.
	ReplicaID string
	// Version is the running application version.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote store endpoint used for operation dispatch.
	HTTPAddress string
	// WSAddress is the real-time channel endpoint; empty disables push.
	WSAddress string
	// RequestTimeout is the default timeout for outbound transport calls.
	RequestTimeout time.Duration
	// AuthToken is the bearer token attached to transport requests.
	AuthToken string
}

// ClientDB contains local queue database settings for the client.
type ClientDB struct {
	// DSN is the sqlite file path for the durable sync queue.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains orchestrator tunables with defaults applied.
	Sync models.AutoSyncConfig
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, normalizes the sync tunables, and validates
// the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			ReplicaID: cfg.App.ReplicaID,
			Version:   cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			WSAddress:      cfg.Adapter.WSAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			AuthToken:      cfg.Adapter.AuthToken,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Sync: models.AutoSyncConfig{
			Concurrency:      cfg.Sync.Concurrency,
			MaxAttempts:      cfg.Sync.MaxAttempts,
			BackoffBase:      cfg.Sync.BackoffBase,
			BackoffCap:       cfg.Sync.BackoffCap,
			BreakerThreshold: cfg.Sync.BreakerThreshold,
			BreakerCooldown:  cfg.Sync.BreakerCooldown,
			ShutdownGrace:    cfg.Sync.ShutdownGrace,
		}.Normalize(),
	}

	return clientCfg, clientCfg.validate()
}
