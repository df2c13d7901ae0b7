// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import (
	"encoding/json"
	"time"
)

// RemoteChange is a push notification from the real-time channel announcing
// that an entity changed on the server. The orchestrator folds these into
// proactive conflict checks even when no local operation is pending for the
// entity.
type RemoteChange struct {
	EntityType  EntityType      `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	ServerClock VectorClock     `json:"server_clock"`
	ServerData  json.RawMessage `json:"server_data,omitempty"`
	Deleted     bool            `json:"deleted,omitempty"`
	At          time.Time       `json:"at"`
}

// Key returns the entity key the change refers to.
func (c RemoteChange) Key() EntityKey {
	return EntityKey{Type: c.EntityType, ID: c.EntityID}
}

// SocketAck is the acknowledgement shape returned by the remote store for a
// transmitted operation. On a version conflict the server echoes its current
// clock and entity state so the client can resolve without a second round
// trip.
type SocketAck struct {
	OperationID string `json:"operation_id"`
	Applied     bool   `json:"applied"`

	// Duplicate is set when the server recognized the idempotency key and
	// skipped re-application. Treated as a successful commit by the client.
	Duplicate bool `json:"duplicate,omitempty"`

	ServerClock VectorClock     `json:"server_clock,omitempty"`
	ServerData  json.RawMessage `json:"server_data,omitempty"`
}
