// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package queue

import "errors"

var (
	// ErrOperationNotFound means no queue item carries the given operation ID.
	ErrOperationNotFound = errors.New("operation not found in queue")

	// ErrEntityDeleted rejects operations enqueued behind a pending delete of
	// the same entity.
	ErrEntityDeleted = errors.New("entity has a pending delete")

	// ErrInvalidOperation rejects operations missing an ID, entity address or
	// a recognized kind.
	ErrInvalidOperation = errors.New("invalid sync operation")

	// ErrWrongState means the requested transition does not apply to the
	// item's current status.
	ErrWrongState = errors.New("queue item is in the wrong state")
)
