// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vpanarin/wealthkeeper/models"
)

type memoryQueueStore struct {
	mu    sync.RWMutex
	items map[string]models.OfflineQueueItem
}

// NewMemoryQueueStore returns an in-memory [DurableQueueStore]. It offers no
// crash safety and exists for tests and ephemeral ":memory:" runs.
func NewMemoryQueueStore() DurableQueueStore {
	return &memoryQueueStore{items: make(map[string]models.OfflineQueueItem)}
}

func (s *memoryQueueStore) Persist(_ context.Context, item models.OfflineQueueItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.Operation.ID] = item
	return nil
}

func (s *memoryQueueStore) LoadAll(_ context.Context) ([]models.OfflineQueueItem, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OfflineQueueItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
		}
		return out[i].Operation.ID < out[j].Operation.ID
	})

	return out, 0, nil
}

func (s *memoryQueueStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

func (s *memoryQueueStore) Close() error {
	return nil
}
