// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpanarin/wealthkeeper/internal/config"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) TransportAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewHTTPTransportAdapter(config.ClientAdapter{
		HTTPAddress:    srv.URL,
		RequestTimeout: 5 * time.Second,
		AuthToken:      "test-token",
	}, logger.Nop())
	require.NoError(t, err)

	return a
}

func testOperation() models.SyncOperation {
	return models.SyncOperation{
		ID:         "op-1",
		EntityType: models.EntityTransaction,
		EntityID:   "t1",
		Kind:       models.OpUpdate,
		Payload:    json.RawMessage(`{"amount":"50"}`),
		BaseClock:  models.VectorClock{"device-1": 1},
		CreatedAt:  time.Now(),
	}
}

func TestHTTPTransportAdapter_SendAcked(t *testing.T) {
	var gotPath, gotAuth string

	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SocketAck{
			OperationID: "op-1",
			Applied:     true,
			ServerClock: models.VectorClock{"device-1": 1, "server": 3},
		})
	})

	result, err := a.Send(context.Background(), testOperation())
	require.NoError(t, err)

	assert.Equal(t, "/api/sync/operations/op-1", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, SendAcked, result.Status)
	assert.True(t, result.Ack.Applied)
	assert.Equal(t, int64(3), result.Ack.ServerClock.Counter("server"))
}

func TestHTTPTransportAdapter_SendDuplicateAck(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SocketAck{OperationID: "op-1", Duplicate: true})
	})

	result, err := a.Send(context.Background(), testOperation())
	require.NoError(t, err)
	assert.Equal(t, SendAcked, result.Status)
	assert.True(t, result.Ack.Duplicate, "idempotent replay must surface as a duplicate ack")
}

func TestHTTPTransportAdapter_SendConflict(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{
			"server_clock": {"device-1": 1, "device-2": 1},
			"server_data": {"amount": "60"}
		}`))
	})

	result, err := a.Send(context.Background(), testOperation())
	require.NoError(t, err, "a conflict answer is not a transport error")

	assert.Equal(t, SendConflict, result.Status)
	assert.Equal(t, models.VectorClock{"device-1": 1, "device-2": 1}, result.ServerClock)
	assert.JSONEq(t, `{"amount":"60"}`, string(result.ServerData))
}

func TestHTTPTransportAdapter_SendFatalStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrUnauthorized},
		{name: "bad request", status: http.StatusBadRequest, wantErr: ErrBadRequest},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantErr: ErrUnprocessable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.name, tt.status)
			})

			_, err := a.Send(context.Background(), testOperation())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsFatal(err))
			assert.False(t, IsTransient(err))
		})
	}
}

func TestHTTPTransportAdapter_SendTransientStatuses(t *testing.T) {
	for _, status := range []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
	} {
		a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "try later", status)
		})

		_, err := a.Send(context.Background(), testOperation())
		require.Error(t, err)
		assert.True(t, IsTransient(err), "status %d must be transient", status)
		assert.False(t, IsFatal(err), "status %d must not be fatal", status)
	}
}

func TestHTTPTransportAdapter_SendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // closed server: dial fails

	a, err := NewHTTPTransportAdapter(config.ClientAdapter{
		HTTPAddress:    srv.URL,
		RequestTimeout: time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	_, err = a.Send(context.Background(), testOperation())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsTransient(err))
}

func TestHTTPTransportAdapter_SetToken(t *testing.T) {
	a, err := NewHTTPTransportAdapter(config.ClientAdapter{
		HTTPAddress:    "localhost:8080",
		RequestTimeout: time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	assert.Empty(t, a.Token())
	a.SetToken("  fresh-token  ")
	assert.Equal(t, "fresh-token", a.Token())
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare host port", in: "localhost:8080", want: "http://localhost:8080"},
		{name: "explicit scheme", in: "https://api.example.com/", want: "https://api.example.com"},
		{name: "empty", in: "   ", wantErr: true},
		{name: "scheme only", in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
