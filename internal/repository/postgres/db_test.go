package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE`).WillReturnError(errors.New("permission denied"))
	require.Error(t, Migrate(context.Background(), db))
}

func TestSchema_enforcesCapacityAtStorage(t *testing.T) {
	assert.Contains(t, schema, "CHECK (cardinality(attendees) <= capacity)")
	assert.Contains(t, schema, "email               TEXT NOT NULL UNIQUE")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID(seminarID))
	assert.False(t, validID("64b7f0c2a1b2c3d4e5f60718"))
	assert.False(t, validID(""))
}
