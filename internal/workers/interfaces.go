// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// Run either completes its job and returns, or starts background goroutines
// bound to ctx and returns once they are up. A non-nil error aborts the
// startup sequence.
type Worker interface {
	Run(ctx context.Context) error
}
