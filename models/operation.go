// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import (
	"encoding/json"
	"time"
)

// OperationKind classifies a local mutation queued for synchronization.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// Valid reports whether k is a recognized operation kind.
func (k OperationKind) Valid() bool {
	switch k {
	case OpCreate, OpUpdate, OpDelete:
		return true
	default:
		return false
	}
}

// SyncOperation is a single local mutation awaiting replay against the
// remote store.
//
// ID is a globally unique idempotency key: the remote store must reject a
// second application of the same ID, so retransmitting a committed operation
// is harmless.
type SyncOperation struct {
	// ID is the stable idempotency key for this operation.
	ID string `json:"id"`

	// EntityType and EntityID address the entity this operation mutates.
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	// Kind is the mutation type: create, update or delete.
	Kind OperationKind `json:"kind"`

	// Payload is the full entity state after the local mutation. Empty for
	// deletes. The engine treats it as opaque bytes; only the conflict
	// resolver decodes it.
	Payload json.RawMessage `json:"payload,omitempty"`

	// BasePayload is the entity state the mutation was made against. It lets
	// the conflict resolver run a three-way field diff instead of guessing
	// which side changed a field. Empty for creates.
	BasePayload json.RawMessage `json:"base_payload,omitempty"`

	// BaseClock is the entity's vector clock at the moment the mutation was
	// made. The conflict detector compares it against the remote clock.
	BaseClock VectorClock `json:"base_clock"`

	// CreatedAt is the wall-clock time of the local mutation, used by the
	// last-write-wins resolution policy.
	CreatedAt time.Time `json:"created_at"`

	// Attempt counts transmission attempts made so far.
	Attempt int `json:"attempt"`
}

// Key returns the entity key addressed by the operation.
func (op SyncOperation) Key() EntityKey {
	return EntityKey{Type: op.EntityType, ID: op.EntityID}
}
