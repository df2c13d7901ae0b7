// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package models

import (
	"encoding/json"
	"time"
)

// SyncConflict is produced by the conflict detector when a queued operation
// and the remote entity diverged concurrently, and consumed by the conflict
// resolver.
type SyncConflict struct {
	// ID identifies the conflict for manual resolution.
	ID string `json:"id"`

	// Operation is the queued client operation that raced the server.
	Operation SyncOperation `json:"operation"`

	// ServerData is the remote entity state reported with the conflict.
	ServerData json.RawMessage `json:"server_data,omitempty"`

	// ClientData is the client-side entity state (the operation payload).
	ClientData json.RawMessage `json:"client_data,omitempty"`

	// ServerClock is the remote entity's vector clock.
	ServerClock VectorClock `json:"server_clock"`

	DetectedAt time.Time `json:"detected_at"`
}

// ResolutionStrategy names the policy the resolver applied to a conflict.
type ResolutionStrategy string

const (
	StrategyLastWriteWins ResolutionStrategy = "lastWriteWins"
	StrategyFieldMerge    ResolutionStrategy = "fieldMerge"
	StrategyManual        ResolutionStrategy = "manual"
)

// ConflictWinner records which side a resolution favoured.
type ConflictWinner string

const (
	WinnerClient ConflictWinner = "client"
	WinnerServer ConflictWinner = "server"
	WinnerMerged ConflictWinner = "merged"
	WinnerNone   ConflictWinner = "none"
)

// ConflictAnalysis is the resolver's verdict on a SyncConflict.
//
// Resolution never loses data: even when a winner is chosen automatically,
// the losing side's payload is carried in DiscardedData so it can be attached
// to the resolution event for audit.
type ConflictAnalysis struct {
	Strategy ResolutionStrategy `json:"strategy"`

	// MergedData is the payload to re-enqueue when the conflict resolved
	// automatically. Nil when RequiresUserInput is set.
	MergedData json.RawMessage `json:"merged_data,omitempty"`

	// RequiresUserInput marks conflicts the engine refuses to settle on its
	// own, e.g. the same financial amount changed differently on both sides.
	RequiresUserInput bool `json:"requires_user_input"`

	Winner ConflictWinner `json:"winner"`

	// DiscardedData preserves the side that lost an automatic resolution.
	DiscardedData json.RawMessage `json:"discarded_data,omitempty"`

	// ConflictingFields lists field names that changed on both sides.
	ConflictingFields []string `json:"conflicting_fields,omitempty"`
}

// ManualChoice is the caller's decision for a conflict that required user
// input.
type ManualChoice string

const (
	ChoiceKeepClient ManualChoice = "keepClient"
	ChoiceKeepServer ManualChoice = "keepServer"
	ChoiceMerged     ManualChoice = "merged"
)

// ManualResolution carries a ManualChoice together with the caller-provided
// payload when the choice is ChoiceMerged.
type ManualResolution struct {
	Choice ManualChoice    `json:"choice"`
	Merged json.RawMessage `json:"merged,omitempty"`
}
