package migrations

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionsAreOrdered(t *testing.T) {
	versions, err := Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_citizens", "000002_create_outbox"}, versions)
}

func TestUpSkipsRecordedVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insert := regexp.QuoteMeta(`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("000001_create_citizens").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("000002_create_outbox").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS outbox").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_create_outbox"}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schema_migrations").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS citizens").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_create_citizens")
	assert.Empty(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
