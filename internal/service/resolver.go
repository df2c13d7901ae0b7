// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"dario.cat/mergo"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

// ConflictResolver rules on detected conflicts with a per-entity-type
// policy:
//
//   - transaction, account, budget, goal: three-way field diff against the
//     operation's base payload. Disjoint edits merge automatically; the same
//     field changed to different non-default values on both sides escalates
//     to manual resolution. Financial amounts are never auto-picked.
//   - category: last-write-wins by wall clock. Categories carry only
//     structural fields, so the newer edit is safe to keep wholesale.
//
// The losing side of every automatic resolution is preserved in
// DiscardedData for audit.
type ConflictResolver struct {
	logger *logger.Logger
}

func NewConflictResolver(log *logger.Logger) *ConflictResolver {
	return &ConflictResolver{logger: log}
}

// Resolve analyses the conflict and returns the resolution verdict. It never
// mutates queue state; the orchestrator applies the verdict.
func (r *ConflictResolver) Resolve(conflict models.SyncConflict) (models.ConflictAnalysis, error) {
	op := conflict.Operation

	if op.Kind == models.OpDelete {
		return r.manual(conflict, nil, "local delete races a remote update"), nil
	}
	if len(conflict.ServerData) == 0 {
		return r.manual(conflict, nil, "remote delete races a local update"), nil
	}

	if op.EntityType == models.EntityCategory {
		return r.resolveLastWriteWins(conflict), nil
	}
	return r.resolveFieldMerge(conflict)
}

func (r *ConflictResolver) resolveLastWriteWins(conflict models.SyncConflict) models.ConflictAnalysis {
	// Without an explicit server timestamp the freshly observed server state
	// counts as newer.
	serverAt := conflict.DetectedAt
	if t, ok := extractTimestamp(conflict.ServerData); ok {
		serverAt = t
	}

	if conflict.Operation.CreatedAt.After(serverAt) {
		return models.ConflictAnalysis{
			Strategy:      models.StrategyLastWriteWins,
			MergedData:    conflict.ClientData,
			Winner:        models.WinnerClient,
			DiscardedData: conflict.ServerData,
		}
	}
	return models.ConflictAnalysis{
		Strategy:      models.StrategyLastWriteWins,
		Winner:        models.WinnerServer,
		DiscardedData: conflict.ClientData,
	}
}

func (r *ConflictResolver) resolveFieldMerge(conflict models.SyncConflict) (models.ConflictAnalysis, error) {
	base, err := decodeObject(conflict.Operation.BasePayload)
	if err != nil {
		return r.manual(conflict, nil, "base payload is not a JSON object"), nil
	}
	client, err := decodeObject(conflict.ClientData)
	if err != nil {
		return r.manual(conflict, nil, "client payload is not a JSON object"), nil
	}
	server, err := decodeObject(conflict.ServerData)
	if err != nil {
		return r.manual(conflict, nil, "server payload is not a JSON object"), nil
	}

	clientChanges := make(map[string]any)
	var conflicting []string

	for field := range fieldUnion(client, server) {
		cv := client[field]
		sv := server[field]
		bv := base[field]

		clientChanged := !jsonEqual(cv, bv)
		serverChanged := !jsonEqual(sv, bv)

		switch {
		case clientChanged && serverChanged && !jsonEqual(cv, sv):
			// Both sides touched the field. A side that reset it to the
			// default loses to a side that set a value; two real values need
			// the user.
			switch {
			case isDefaultValue(cv) && !isDefaultValue(sv):
				// server value already in the merge base
			case isDefaultValue(sv) && !isDefaultValue(cv):
				clientChanges[field] = cv
			default:
				conflicting = append(conflicting, field)
			}
		case clientChanged:
			clientChanges[field] = cv
		}
	}

	if len(conflicting) > 0 {
		sort.Strings(conflicting)
		analysis := r.manual(conflict, conflicting, "")
		return analysis, nil
	}

	merged := make(map[string]any, len(server))
	for k, v := range server {
		merged[k] = v
	}
	if err = mergo.Map(&merged, clientChanges, mergo.WithOverride); err != nil {
		return models.ConflictAnalysis{}, fmt.Errorf("merge conflict %s: %w", conflict.ID, err)
	}

	mergedData, err := json.Marshal(merged)
	if err != nil {
		return models.ConflictAnalysis{}, fmt.Errorf("encode merged payload for %s: %w", conflict.ID, err)
	}

	return models.ConflictAnalysis{
		Strategy:      models.StrategyFieldMerge,
		MergedData:    mergedData,
		Winner:        models.WinnerMerged,
		DiscardedData: conflict.ServerData,
	}, nil
}

func (r *ConflictResolver) manual(conflict models.SyncConflict, fields []string, reason string) models.ConflictAnalysis {
	if reason != "" {
		r.logger.Debug().
			Str("func", "ConflictResolver.manual").
			Str("conflict_id", conflict.ID).
			Str("reason", reason).
			Msg("conflict escalated to manual resolution")
	}

	return models.ConflictAnalysis{
		Strategy:          models.StrategyManual,
		RequiresUserInput: true,
		Winner:            models.WinnerNone,
		ConflictingFields: fields,
		DiscardedData:     conflict.ServerData,
	}
}

// decodeObject decodes raw into a generic JSON object. Nil or empty input
// yields an empty map.
func decodeObject(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func fieldUnion(a, b map[string]any) map[string]struct{} {
	union := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		union[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
	}
	return union
}

// jsonEqual compares two decoded JSON values structurally. Missing fields
// arrive as nil.
func jsonEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// isDefaultValue reports whether v is the zero of its JSON type.
func isDefaultValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// extractTimestamp pulls an RFC 3339 "updated_at" or "created_at" field out
// of a raw entity payload, when one is present.
func extractTimestamp(raw json.RawMessage) (time.Time, bool) {
	var probe struct {
		UpdatedAt *time.Time `json:"updated_at"`
		CreatedAt *time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return time.Time{}, false
	}
	if probe.UpdatedAt != nil {
		return *probe.UpdatedAt, true
	}
	if probe.CreatedAt != nil {
		return *probe.CreatedAt, true
	}
	return time.Time{}, false
}
