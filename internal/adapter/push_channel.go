// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/vpanarin/wealthkeeper/internal/config"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

const reconnectDelay = 5 * time.Second

type websocketPushChannel struct {
	url    string
	token  string
	logger *logger.Logger
}

// NewWebsocketPushChannel constructs a [PushChannel] that subscribes to the
// remote store's real-time channel over a websocket. Returns an error when
// the websocket address is empty.
func NewWebsocketPushChannel(adapterCfg config.ClientAdapter, log *logger.Logger) (PushChannel, error) {
	addr := strings.TrimSpace(adapterCfg.WSAddress)
	if addr == "" {
		return nil, fmt.Errorf("empty websocket address")
	}
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}

	return &websocketPushChannel{
		url:    addr,
		token:  strings.TrimSpace(adapterCfg.AuthToken),
		logger: log,
	}, nil
}

// Listen implements [PushChannel]. It keeps a connection open until ctx is
// cancelled, redialing after transient failures with a fixed delay. Messages
// that do not decode into a RemoteChange are logged and skipped.
func (w *websocketPushChannel) Listen(ctx context.Context, handler func(models.RemoteChange)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.listenOnce(ctx, handler); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.Warn().Err(err).
				Str("func", "websocketPushChannel.Listen").
				Msg("push channel dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *websocketPushChannel) listenOnce(ctx context.Context, handler func(models.RemoteChange)) error {
	opts := &websocket.DialOptions{}
	if w.token != "" {
		opts.HTTPHeader = map[string][]string{
			"Authorization": {"Bearer " + w.token},
		}
	}

	conn, _, err := websocket.Dial(ctx, w.url, opts)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "listener stopped")

	w.logger.Debug().Str("func", "websocketPushChannel.listenOnce").Msg("push channel connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read push channel: %w", err)
		}

		var change models.RemoteChange
		if err = json.Unmarshal(data, &change); err != nil {
			w.logger.Warn().Err(err).
				Str("func", "websocketPushChannel.listenOnce").
				Msg("skipping undecodable remote change")
			continue
		}
		if !change.EntityType.Valid() {
			w.logger.Warn().
				Str("func", "websocketPushChannel.listenOnce").
				Str("entity_type", string(change.EntityType)).
				Msg("skipping remote change with unknown entity type")
			continue
		}

		handler(change)
	}
}
