package store

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// SQLRecordStore implements the same one-record-per-ID shape as
// RecordStore[T], backed by a SQL table instead of a directory of JSON
// files, for hosts that want queryable persistence (spec.md §4.9 names
// this as an optional backend; the wire envelope is unchanged). Works
// against Postgres (via lib/pq) or embedded SQLite (via modernc.org/sqlite)
// — whichever driver opened db.
type SQLRecordStore[T any] struct {
	db    *sql.DB
	table string
}

// NewSQLRecordStore opens a SQL-backed record store against an existing
// *sql.DB and ensures its backing table exists. table must be a valid,
// caller-controlled identifier (never derived from untrusted input — it
// is interpolated into DDL, which database/sql cannot parametrize).
func NewSQLRecordStore[T any](ctx context.Context, db *sql.DB, table string) (*SQLRecordStore[T], error) {
	const op = "store.NewSQLRecordStore"
	ddl := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		record_json TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return &SQLRecordStore[T]{db: db, table: table}, nil
}

// Save upserts record under id.
func (s *SQLRecordStore[T]) Save(ctx context.Context, id string, record T) error {
	const op = "store.SQLRecordStore.Save"
	data, err := json.Marshal(record)
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	q := `INSERT INTO ` + s.table + ` (id, version, record_json) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version, record_json = excluded.record_json`
	if _, err := s.db.ExecContext(ctx, q, id, RecordVersion, string(data)); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}

// Load reads the record stored under id, KindNotFound if absent.
func (s *SQLRecordStore[T]) Load(ctx context.Context, id string) (T, error) {
	const op = "store.SQLRecordStore.Load"
	var zero T
	q := `SELECT record_json FROM ` + s.table + ` WHERE id = $1`
	row := s.db.QueryRowContext(ctx, q, id)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return zero, xerrors.New(xerrors.KindNotFound, op, "no record with id "+id)
		}
		return zero, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return zero, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return record, nil
}

// List enumerates every record ID currently stored.
func (s *SQLRecordStore[T]) List(ctx context.Context) ([]string, error) {
	const op = "store.SQLRecordStore.List"
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM `+s.table)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, xerrors.Wrap(xerrors.KindStorage, op, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the record stored under id. Idempotent on a missing id.
func (s *SQLRecordStore[T]) Delete(ctx context.Context, id string) error {
	const op = "store.SQLRecordStore.Delete"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}
