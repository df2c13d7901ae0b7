// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/vpanarin/wealthkeeper/internal/config"
	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

const (
	queueTable      = "sync_queue"
	quarantineTable = "sync_queue_quarantine"
)

var queueColumns = []string{
	"id",
	"entity_type",
	"entity_id",
	"kind",
	"payload",
	"base_payload",
	"base_clock",
	"status",
	"attempt",
	"next_retry_at",
	"last_error",
	"created_at",
	"enqueued_at",
	"updated_at",
}

type sqliteQueueStore struct {
	*DB
}

// NewSQLiteQueueStore opens the local queue database, applies migrations and
// returns a crash-safe [DurableQueueStore] backed by sqlite.
func NewSQLiteQueueStore(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (DurableQueueStore, error) {
	db, err := NewConnectSQLite(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect queue database: %w", err)
	}

	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate queue database: %w", err)
	}

	return &sqliteQueueStore{db}, nil
}

// Persist implements [DurableQueueStore]. It upserts the row keyed by the
// operation ID so repeated state transitions overwrite in place.
func (s *sqliteQueueStore) Persist(ctx context.Context, item models.OfflineQueueItem) error {
	baseClock, err := json.Marshal(item.Operation.BaseClock)
	if err != nil {
		return fmt.Errorf("encode base clock: %w", err)
	}

	var nextRetry any
	if !item.NextRetryAt.IsZero() {
		nextRetry = item.NextRetryAt
	}

	query, args, err := sq.Insert(queueTable).
		Options("OR REPLACE").
		Columns(queueColumns...).
		Values(
			item.Operation.ID,
			string(item.Operation.EntityType),
			item.Operation.EntityID,
			string(item.Operation.Kind),
			[]byte(item.Operation.Payload),
			[]byte(item.Operation.BasePayload),
			string(baseClock),
			string(item.Status),
			item.Operation.Attempt,
			nextRetry,
			item.LastError,
			item.Operation.CreatedAt,
			item.EnqueuedAt,
			item.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrItemNotSaved
	}

	return nil
}

// LoadAll implements [DurableQueueStore]. Rows that cannot be decoded are
// moved to the quarantine table and counted; the load itself never fails over
// a single bad row.
func (s *sqliteQueueStore) LoadAll(ctx context.Context) ([]models.OfflineQueueItem, int, error) {
	query, args, err := sq.Select(queueColumns...).
		From(queueTable).
		OrderBy("enqueued_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.OfflineQueueItem
	var corrupt []corruptRow

	for rows.Next() {
		item, raw, scanErr := scanQueueRow(rows)
		if scanErr != nil {
			s.logger.Err(scanErr).
				Str("func", "sqliteQueueStore.LoadAll").
				Str("item_id", raw.id).
				Msg("quarantining unreadable queue row")
			corrupt = append(corrupt, corruptRow{id: raw.id, raw: raw.bytes(), reason: scanErr.Error()})
			continue
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	for _, row := range corrupt {
		if qErr := s.quarantine(ctx, row); qErr != nil {
			s.logger.Err(qErr).
				Str("func", "sqliteQueueStore.LoadAll").
				Str("item_id", row.id).
				Msg("error quarantining corrupt row")
		}
	}

	return items, len(corrupt), nil
}

// Remove implements [DurableQueueStore]. Removing an unknown ID is a no-op.
func (s *sqliteQueueStore) Remove(ctx context.Context, id string) error {
	query, args, err := sq.Delete(queueTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// Close implements [DurableQueueStore].
func (s *sqliteQueueStore) Close() error {
	return s.DB.Close()
}

type corruptRow struct {
	id     string
	raw    []byte
	reason string
}

// rawQueueRow keeps the scanned column values around so a row that fails
// validation can still be quarantined verbatim.
type rawQueueRow struct {
	id          string
	entityType  string
	entityID    string
	kind        string
	payload     []byte
	basePayload []byte
	baseClock   string
	status      string
	attempt     int
	nextRetryAt sql.NullTime
	lastError   sql.NullString
	createdAt   time.Time
	enqueuedAt  time.Time
	updatedAt   time.Time
}

func (r rawQueueRow) bytes() []byte {
	b, _ := json.Marshal(map[string]any{
		"id":          r.id,
		"entity_type": r.entityType,
		"entity_id":   r.entityID,
		"kind":        r.kind,
		"payload":     r.payload,
		"base_clock":  r.baseClock,
		"status":      r.status,
	})
	return b
}

func scanQueueRow(rows *sql.Rows) (models.OfflineQueueItem, rawQueueRow, error) {
	var r rawQueueRow
	if err := rows.Scan(
		&r.id,
		&r.entityType,
		&r.entityID,
		&r.kind,
		&r.payload,
		&r.basePayload,
		&r.baseClock,
		&r.status,
		&r.attempt,
		&r.nextRetryAt,
		&r.lastError,
		&r.createdAt,
		&r.enqueuedAt,
		&r.updatedAt,
	); err != nil {
		return models.OfflineQueueItem{}, r, fmt.Errorf("%w: scan: %w", ErrStorageCorruption, err)
	}

	var baseClock models.VectorClock
	if err := json.Unmarshal([]byte(r.baseClock), &baseClock); err != nil {
		return models.OfflineQueueItem{}, r, fmt.Errorf("%w: decode base clock: %w", ErrStorageCorruption, err)
	}

	entityType := models.EntityType(r.entityType)
	kind := models.OperationKind(r.kind)
	if !entityType.Valid() || !kind.Valid() {
		return models.OfflineQueueItem{}, r, fmt.Errorf("%w: unknown entity type %q or kind %q", ErrStorageCorruption, r.entityType, r.kind)
	}

	item := models.OfflineQueueItem{
		Operation: models.SyncOperation{
			ID:          r.id,
			EntityType:  entityType,
			EntityID:    r.entityID,
			Kind:        kind,
			Payload:     r.payload,
			BasePayload: r.basePayload,
			BaseClock:   baseClock,
			CreatedAt:   r.createdAt,
			Attempt:     r.attempt,
		},
		Status:     models.ItemStatus(r.status),
		EnqueuedAt: r.enqueuedAt,
		UpdatedAt:  r.updatedAt,
	}
	if r.nextRetryAt.Valid {
		item.NextRetryAt = r.nextRetryAt.Time
	}
	if r.lastError.Valid {
		item.LastError = r.lastError.String
	}

	return item, r, nil
}

func (s *sqliteQueueStore) quarantine(ctx context.Context, row corruptRow) error {
	insert, args, err := sq.Insert(quarantineTable).
		Options("OR REPLACE").
		Columns("id", "raw", "reason", "quarantined_at").
		Values(row.id, row.raw, row.reason, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	remove, args, err := sq.Delete(queueTable).Where(sq.Eq{"id": row.id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, remove, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}
