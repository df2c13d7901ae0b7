// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package adapter provides transport-layer abstractions for communicating
// with the remote wealthkeeper store.
//
// The primary abstraction is [TransportAdapter], which decouples the sync
// engine from the underlying protocol; the package ships an HTTP/REST
// implementation ([NewHTTPTransportAdapter]) and a websocket push channel
// ([NewWebsocketPushChannel]) for remote change notifications.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling. [IsTransient] and [IsFatal] classify the taxonomy the
// orchestrator's retry policy relies on: transient errors are retried with
// backoff, fatal ones discard the operation immediately.
package adapter

import (
	"context"

	"github.com/vpanarin/wealthkeeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// SendStatus classifies the remote store's answer to a transmitted
// operation.
type SendStatus int

const (
	// SendAcked means the operation was applied (or recognized as a
	// duplicate of an already applied operation and skipped).
	SendAcked SendStatus = iota

	// SendConflict means the remote entity advanced past the operation's
	// base clock; the result carries the server's clock and entity state for
	// conflict detection. A conflict answer is not an error.
	SendConflict
)

// SendResult is the decoded remote store answer for one operation.
type SendResult struct {
	Status SendStatus

	// Ack is populated when Status is SendAcked.
	Ack models.SocketAck

	// ServerClock and ServerData are populated when Status is SendConflict.
	ServerClock models.VectorClock
	ServerData  []byte
}

// TransportAdapter defines transport-agnostic communication with the remote
// store. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level failures to the sentinel
// values defined in this package.
type TransportAdapter interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Send transmits one operation. The operation ID doubles as the
	// idempotency key: the remote store must not double-apply a replayed ID
	// and answers such replays with a duplicate ack.
	//
	// A version conflict is reported through the result, not the error:
	// errors carry only transport-level failures, classified by
	// [IsTransient] / [IsFatal].
	Send(ctx context.Context, op models.SyncOperation) (SendResult, error)
}

// PushChannel delivers real-time remote change notifications. The
// orchestrator folds them into proactive conflict checks even when no local
// operation is pending for the changed entity.
type PushChannel interface {
	// Listen blocks, invoking handler for every received change until ctx is
	// cancelled. Implementations reconnect on transient failures.
	Listen(ctx context.Context, handler func(models.RemoteChange)) error
}
