// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package store

import "errors"

// Sentinel errors returned by queue store methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrItemNotFound is returned when a lookup targets an operation ID that
	// is not present in the store.
	ErrItemNotFound = errors.New("queue item was not found")

	// ErrItemNotSaved is returned when an INSERT completes without error but
	// affects zero rows, meaning nothing was actually persisted.
	ErrItemNotSaved = errors.New("queue item was not saved")

	// ErrStorageCorruption is returned (wrapped) when a persisted item cannot
	// be decoded. The corrupt row is quarantined rather than dropped so the
	// operator can inspect it.
	ErrStorageCorruption = errors.New("queue storage corruption")
)

// Low-level database operation errors, returned or wrapped when a SQL-level
// operation fails before any domain logic applies.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")
)
