// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import (
	"encoding/json"
	"time"
)

// SyncEventType enumerates the lifecycle notifications fanned out by the
// event bus.
type SyncEventType string

const (
	EventQueued    SyncEventType = "queued"
	EventSending   SyncEventType = "sending"
	EventCommitted SyncEventType = "committed"
	EventConflict  SyncEventType = "conflict"
	EventDegraded  SyncEventType = "degraded"
	EventDiscarded SyncEventType = "discarded"

	// EventRemoteRace announces that a push notification concerns an entity
	// with queued local work whose base clock is concurrent with the server's.
	// The next send attempt will surface the conflict; subscribers get an
	// early heads-up.
	EventRemoteRace SyncEventType = "remoteRace"
)

// SyncEvent is the notification payload delivered to event bus subscribers.
// Fields beyond Type are populated where they make sense for the event.
type SyncEvent struct {
	Type        SyncEventType `json:"type"`
	Entity      EntityKey     `json:"entity,omitzero"`
	OperationID string        `json:"operation_id,omitempty"`
	ConflictID  string        `json:"conflict_id,omitempty"`
	Error       string        `json:"error,omitempty"`
	At          time.Time     `json:"at"`

	// Resolution accompanies conflict events once the resolver has ruled.
	Resolution *ConflictAnalysis `json:"resolution,omitempty"`
}

// ConflictResolutionEvent is emitted after a conflict is settled, whether
// automatically or manually. DiscardedData inside Analysis keeps the losing
// side auditable.
type ConflictResolutionEvent struct {
	ConflictID string           `json:"conflict_id"`
	Entity     EntityKey        `json:"entity"`
	Analysis   ConflictAnalysis `json:"analysis"`
	Chosen     json.RawMessage  `json:"chosen,omitempty"`
	ResolvedAt time.Time        `json:"resolved_at"`
	Manual     bool             `json:"manual"`
}
