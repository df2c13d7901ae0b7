// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import "errors"

var (
	// ErrConflictNotFound means no conflict with the given ID is tracked.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrAlreadyResolved rejects a second resolution of the same conflict.
	ErrAlreadyResolved = errors.New("conflict already resolved")

	// ErrInvalidResolution rejects an unrecognized manual choice or a merged
	// choice without a payload.
	ErrInvalidResolution = errors.New("invalid conflict resolution")

	// ErrAlreadyRunning rejects a second Run on the same orchestrator.
	ErrAlreadyRunning = errors.New("orchestrator already running")
)
