package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These two scenarios are awkward to trigger against a real SQLite file (a
// mid-write disk-full condition, a driver-level scan failure) so they use a
// mocked driver instead, the way the persistence layer tests in the pack do.

func TestPutCache_DriverErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO content_cache").
		WillReturnError(errors.New("disk I/O error"))

	s := &Store{db: db}
	err = s.PutCache(context.Background(), 1, "body", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PutCache")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvictExpiredCache_RowsAffectedErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM content_cache").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unavailable")))

	s := &Store{db: db}
	_, err = s.EvictExpiredCache(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "EvictExpiredCache")
	require.NoError(t, mock.ExpectationsWereMet())
}
