package store

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func TestSQLRecordStoreSaveAndLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS fake_records`).WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSQLRecordStore[fakeRecord](context.Background(), db, "fake_records")
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO fake_records`).
		WithArgs("rec_1", RecordVersion, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.Save(context.Background(), "rec_1", fakeRecord{ID: "rec_1", Value: 42}))

	rows := sqlmock.NewRows([]string{"record_json"}).AddRow(`{"id":"rec_1","value":42}`)
	mock.ExpectQuery(`SELECT record_json FROM fake_records`).WithArgs("rec_1").WillReturnRows(rows)

	got, err := store.Load(context.Background(), "rec_1")
	require.NoError(t, err)
	require.Equal(t, "rec_1", got.ID)
	require.Equal(t, 42, got.Value)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRecordStoreLoadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS fake_records`).WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSQLRecordStore[fakeRecord](context.Background(), db, "fake_records")
	require.NoError(t, err)

	emptyRows := sqlmock.NewRows([]string{"record_json"})
	mock.ExpectQuery(`SELECT record_json FROM fake_records`).WithArgs("missing").WillReturnRows(emptyRows)

	_, err = store.Load(context.Background(), "missing")
	require.Error(t, err)
}
