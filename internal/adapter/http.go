// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/vpanarin/wealthkeeper/internal/config"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

type httpTransportAdapter struct {
	client *resty.Client
	token  string

	logger *logger.Logger
}

// conflictResponse is the 409 answer body: the server echoes its current
// clock and entity state so the client can resolve without a second round
// trip.
type conflictResponse struct {
	ServerClock models.VectorClock `json:"server_clock"`
	ServerData  json.RawMessage    `json:"server_data,omitempty"`
}

// NewHTTPTransportAdapter constructs an HTTP/REST implementation of
// [TransportAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying client with the
// resolved base URL, request timeout and initial bearer token.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPTransportAdapter(adapterCfg config.ClientAdapter, log *logger.Logger) (TransportAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpTransportAdapter{
		client: client,
		token:  strings.TrimSpace(adapterCfg.AuthToken),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [TransportAdapter]. It stores token
// (whitespace-trimmed) for use in the Authorization header of all subsequent
// requests.
func (h *httpTransportAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [TransportAdapter].
func (h *httpTransportAdapter) Token() string {
	return h.token
}

// Send implements [TransportAdapter]. It PUTs the operation to
// /api/sync/operations/{id}; the operation ID in the path is the
// idempotency key the server deduplicates on. A 409 answer is decoded into a
// conflict result; any other non-2xx status maps to the package sentinels.
func (h *httpTransportAdapter) Send(ctx context.Context, op models.SyncOperation) (SendResult, error) {
	var ack models.SocketAck

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op).
		SetResult(&ack).
		SetPathParam("id", op.ID).
		Put("/api/sync/operations/{id}")
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: send operation %s: %w", ErrTransport, op.ID, err)
	}

	if resp.StatusCode() == http.StatusConflict {
		var conflict conflictResponse
		if err = json.Unmarshal(resp.Body(), &conflict); err != nil {
			return SendResult{}, fmt.Errorf("decode conflict response for %s: %w", op.ID, err)
		}

		return SendResult{
			Status:      SendConflict,
			ServerClock: conflict.ServerClock,
			ServerData:  conflict.ServerData,
		}, nil
	}

	if err = mapHTTPError(resp); err != nil {
		return SendResult{}, err
	}

	if ack.OperationID == "" {
		ack.OperationID = op.ID
	}

	return SendResult{Status: SendAcked, Ack: ack}, nil
}

func (h *httpTransportAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetHeader("Authorization", "Bearer "+h.token)
	}
	return req
}
