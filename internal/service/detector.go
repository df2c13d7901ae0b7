// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"encoding/json"
	"time"

	"github.com/vpanarin/wealthkeeper/internal/clock"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/internal/utils"
	"github.com/vpanarin/wealthkeeper/models"
)

// DetectionOutcome classifies what to do with an operation the server
// refused to apply.
type DetectionOutcome int

const (
	// OutcomeApply means the operation is causally up to date and can be
	// retransmitted as is.
	OutcomeApply DetectionOutcome = iota

	// OutcomeRebase means the server advanced past the operation's base but
	// did not diverge from it: merge clocks and retransmit transparently.
	OutcomeRebase

	// OutcomeConflict means client and server modified the entity
	// concurrently and the resolver has to rule.
	OutcomeConflict
)

// Detection is the detector's verdict on one rejected operation.
type Detection struct {
	Outcome DetectionOutcome

	// MergedClock is the clock to retransmit with when Outcome is
	// OutcomeRebase.
	MergedClock models.VectorClock

	// Conflict is populated when Outcome is OutcomeConflict.
	Conflict *models.SyncConflict
}

// ConflictDetector decides, from vector clock ordering alone, whether a
// server-rejected operation can be rebased transparently or constitutes a
// real concurrency conflict.
type ConflictDetector struct {
	ids    *utils.UUIDGenerator
	logger *logger.Logger
}

func NewConflictDetector(ids *utils.UUIDGenerator, log *logger.Logger) *ConflictDetector {
	return &ConflictDetector{ids: ids, logger: log}
}

// Detect compares the operation's base clock against the server-reported
// clock.
//
// Deletes never rebase: an entity updated remotely after the delete's base
// always needs an explicit decision, because applying the delete would drop
// data this replica has never seen.
func (d *ConflictDetector) Detect(op models.SyncOperation, serverClock models.VectorClock, serverData json.RawMessage) Detection {
	ordering := clock.Compare(op.BaseClock, serverClock)

	d.logger.Debug().
		Str("func", "ConflictDetector.Detect").
		Str("entity", op.Key().String()).
		Str("operation_id", op.ID).
		Str("ordering", ordering.String()).
		Msg("comparing operation base against server clock")

	switch ordering {
	case clock.Equal, clock.After:
		return Detection{Outcome: OutcomeApply}

	case clock.Before:
		if op.Kind == models.OpDelete {
			return d.conflict(op, serverClock, serverData)
		}
		return Detection{
			Outcome:     OutcomeRebase,
			MergedClock: clock.Merge(op.BaseClock, serverClock),
		}

	default:
		return d.conflict(op, serverClock, serverData)
	}
}

func (d *ConflictDetector) conflict(op models.SyncOperation, serverClock models.VectorClock, serverData json.RawMessage) Detection {
	return Detection{
		Outcome: OutcomeConflict,
		Conflict: &models.SyncConflict{
			ID:          d.ids.Generate(),
			Operation:   op,
			ServerData:  serverData,
			ClientData:  op.Payload,
			ServerClock: serverClock.Clone(),
			DetectedAt:  time.Now(),
		},
	}
}
