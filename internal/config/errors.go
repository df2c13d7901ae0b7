// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, a missing replica identifier).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates invalid client storage settings
	// (for example, an empty queue database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing remote address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidSyncConfigs indicates inconsistent orchestrator tunables
	// (for example, a backoff base above the cap).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
