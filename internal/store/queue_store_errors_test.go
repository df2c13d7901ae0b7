// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

func newMockedStore(t *testing.T) (*sqliteQueueStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &sqliteQueueStore{&DB{DB: db, logger: logger.Nop()}}, mock
}

func TestSQLiteQueueStore_PersistExecError(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectExec("INSERT OR REPLACE INTO sync_queue").
		WillReturnError(errors.New("disk I/O error"))

	err := s.Persist(context.Background(), testItem("op-1", time.Now()))
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLiteQueueStore_PersistZeroRows(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectExec("INSERT OR REPLACE INTO sync_queue").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Persist(context.Background(), testItem("op-1", time.Now()))
	assert.ErrorIs(t, err, ErrItemNotSaved)
}

func TestSQLiteQueueStore_LoadAllQueryError(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectQuery("SELECT .* FROM sync_queue").
		WillReturnError(errors.New("database is locked"))

	_, _, err := s.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLiteQueueStore_RemoveExecError(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectExec("DELETE FROM sync_queue").
		WillReturnError(errors.New("disk I/O error"))

	err := s.Remove(context.Background(), "op-1")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestSQLiteQueueStore_LoadAllDecodesStatus(t *testing.T) {
	s, mock := newMockedStore(t)
	now := time.Now()

	rows := sqlmock.NewRows(queueColumns).AddRow(
		"op-1", "transaction", "t1", "update",
		[]byte(`{"amount":"10"}`), []byte(nil), `{"device-1":1}`,
		"failed", 2, now.Add(time.Minute), "timeout", now, now, now,
	)
	mock.ExpectQuery("SELECT .* FROM sync_queue").WillReturnRows(rows)

	items, quarantined, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, quarantined)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusFailed, items[0].Status)
	assert.Equal(t, "timeout", items[0].LastError)
	assert.Equal(t, 2, items[0].Operation.Attempt)
}
