// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

func newTestResolver() *ConflictResolver {
	return NewConflictResolver(logger.Nop())
}

func conflictWith(t models.EntityType, kind models.OperationKind, base, client, server string) models.SyncConflict {
	op := models.SyncOperation{
		ID:         "op-1",
		EntityType: t,
		EntityID:   "e1",
		Kind:       kind,
		CreatedAt:  time.Now(),
	}
	if base != "" {
		op.BasePayload = json.RawMessage(base)
	}
	if client != "" {
		op.Payload = json.RawMessage(client)
	}

	c := models.SyncConflict{
		ID:         "c1",
		Operation:  op,
		ClientData: op.Payload,
		DetectedAt: time.Now(),
	}
	if server != "" {
		c.ServerData = json.RawMessage(server)
	}
	return c
}

func TestResolve_DisjointFieldsMerge(t *testing.T) {
	r := newTestResolver()

	analysis, err := r.Resolve(conflictWith(models.EntityTransaction, models.OpUpdate,
		`{"amount":"40","payee":"","notes":""}`,
		`{"amount":"40","payee":"","notes":"lunch"}`,
		`{"amount":"40","payee":"amazon","notes":""}`,
	))
	require.NoError(t, err)

	assert.Equal(t, models.StrategyFieldMerge, analysis.Strategy)
	assert.False(t, analysis.RequiresUserInput)
	assert.Equal(t, models.WinnerMerged, analysis.Winner)
	assert.Empty(t, analysis.ConflictingFields)
	assert.JSONEq(t, `{"amount":"40","payee":"amazon","notes":"lunch"}`, string(analysis.MergedData))
	assert.NotEmpty(t, analysis.DiscardedData, "the replaced server snapshot is kept for audit")
}

func TestResolve_SameAmountChangedBothSidesNeedsUser(t *testing.T) {
	r := newTestResolver()

	analysis, err := r.Resolve(conflictWith(models.EntityTransaction, models.OpUpdate,
		`{"amount":"40"}`,
		`{"amount":"50"}`,
		`{"amount":"60"}`,
	))
	require.NoError(t, err)

	assert.Equal(t, models.StrategyManual, analysis.Strategy)
	assert.True(t, analysis.RequiresUserInput, "a financial amount is never auto-picked")
	assert.Equal(t, models.WinnerNone, analysis.Winner)
	assert.Equal(t, []string{"amount"}, analysis.ConflictingFields)
	assert.Empty(t, analysis.MergedData)
}

func TestResolve_DefaultSideLosesToRealValue(t *testing.T) {
	r := newTestResolver()

	// client cleared the payee, server set one: the real value wins
	analysis, err := r.Resolve(conflictWith(models.EntityTransaction, models.OpUpdate,
		`{"amount":"40","payee":"old"}`,
		`{"amount":"40","payee":""}`,
		`{"amount":"40","payee":"grocer"}`,
	))
	require.NoError(t, err)
	require.Equal(t, models.StrategyFieldMerge, analysis.Strategy)
	assert.JSONEq(t, `{"amount":"40","payee":"grocer"}`, string(analysis.MergedData))

	// mirrored: server cleared, client set
	analysis, err = r.Resolve(conflictWith(models.EntityTransaction, models.OpUpdate,
		`{"amount":"40","payee":"old"}`,
		`{"amount":"40","payee":"grocer"}`,
		`{"amount":"40","payee":""}`,
	))
	require.NoError(t, err)
	require.Equal(t, models.StrategyFieldMerge, analysis.Strategy)
	assert.JSONEq(t, `{"amount":"40","payee":"grocer"}`, string(analysis.MergedData))
}

func TestResolve_CreateRaceWithoutBaseEscalates(t *testing.T) {
	r := newTestResolver()

	// both replicas created the same entity: no base, both values real
	analysis, err := r.Resolve(conflictWith(models.EntityGoal, models.OpCreate,
		"",
		`{"name":"vacation","target":"1000"}`,
		`{"name":"car","target":"5000"}`,
	))
	require.NoError(t, err)

	assert.True(t, analysis.RequiresUserInput)
	assert.ElementsMatch(t, []string{"name", "target"}, analysis.ConflictingFields)
}

func TestResolve_CategoryLastWriteWins(t *testing.T) {
	r := newTestResolver()

	serverStamp := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	c := conflictWith(models.EntityCategory, models.OpUpdate,
		`{"name":"food","color":"red"}`,
		`{"name":"food","color":"blue"}`,
		`{"name":"food","color":"green","updated_at":"`+serverStamp+`"}`,
	)
	analysis, err := r.Resolve(c)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyLastWriteWins, analysis.Strategy)
	assert.False(t, analysis.RequiresUserInput)
	assert.Equal(t, models.WinnerClient, analysis.Winner, "client edit is newer than the server stamp")
	assert.JSONEq(t, `{"name":"food","color":"blue"}`, string(analysis.MergedData))
	assert.JSONEq(t, string(c.ServerData), string(analysis.DiscardedData))
}

func TestResolve_CategoryServerWinsWithoutTimestamp(t *testing.T) {
	r := newTestResolver()

	c := conflictWith(models.EntityCategory, models.OpUpdate,
		`{"name":"food","color":"red"}`,
		`{"name":"food","color":"blue"}`,
		`{"name":"food","color":"green"}`,
	)
	// the client edit predates detection, and the server carries no stamp
	c.Operation.CreatedAt = time.Now().Add(-time.Minute)

	analysis, err := r.Resolve(c)
	require.NoError(t, err)

	assert.Equal(t, models.WinnerServer, analysis.Winner)
	assert.Empty(t, analysis.MergedData, "server state needs no retransmission")
	assert.JSONEq(t, string(c.ClientData), string(analysis.DiscardedData))
}

func TestResolve_DeleteRacesUpdateNeedsUser(t *testing.T) {
	r := newTestResolver()

	analysis, err := r.Resolve(conflictWith(models.EntityAccount, models.OpDelete,
		`{"name":"cash"}`,
		"",
		`{"name":"cash","balance":"120"}`,
	))
	require.NoError(t, err)

	assert.Equal(t, models.StrategyManual, analysis.Strategy)
	assert.True(t, analysis.RequiresUserInput, "deleting remotely updated data needs an explicit decision")
}

func TestResolve_RemoteDeleteRacesLocalUpdateNeedsUser(t *testing.T) {
	r := newTestResolver()

	analysis, err := r.Resolve(conflictWith(models.EntityAccount, models.OpUpdate,
		`{"name":"cash"}`,
		`{"name":"wallet"}`,
		"",
	))
	require.NoError(t, err)

	assert.True(t, analysis.RequiresUserInput)
	assert.Equal(t, models.WinnerNone, analysis.Winner)
}

func TestResolve_UndecodablePayloadEscalates(t *testing.T) {
	r := newTestResolver()

	c := conflictWith(models.EntityBudget, models.OpUpdate,
		`{"limit":"100"}`,
		`not json`,
		`{"limit":"200"}`,
	)
	analysis, err := r.Resolve(c)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyManual, analysis.Strategy)
	assert.True(t, analysis.RequiresUserInput)
}
