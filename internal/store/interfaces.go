// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package store

import (
	"context"

	"github.com/vpanarin/wealthkeeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DurableQueueStore persists pending sync operations across process
// restarts. The sync queue writes every item state change through this
// interface before acknowledging it, so a crash between steps never loses or
// duplicates work.
//
// Implementations must be crash-safe: a successfully persisted item survives
// a process kill and reappears in LoadAll on the next start.
type DurableQueueStore interface {
	// Persist writes or overwrites the item keyed by its operation ID.
	Persist(ctx context.Context, item models.OfflineQueueItem) error

	// LoadAll returns every persisted item plus the number of unreadable
	// rows that were quarantined during the load. Quarantined rows are moved
	// aside, never dropped, and never abort the load.
	LoadAll(ctx context.Context) ([]models.OfflineQueueItem, int, error)

	// Remove deletes the item with the given operation ID. Removing an
	// unknown ID is not an error.
	Remove(ctx context.Context, id string) error

	// Close releases the underlying resources.
	Close() error
}
