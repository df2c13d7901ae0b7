// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants before it is used at startup.
//
// The structured config itself stays permissive: required fields are enforced
// on the client view, where missing values actually break the runtime.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.App.ReplicaID == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.BackoffBase > cfg.Sync.BackoffCap {
		return ErrInvalidSyncConfigs
	}

	return nil
}
