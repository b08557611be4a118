package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// RecordVersion is the wire envelope version for every per-record JSON
// file. Bumped only if the envelope shape itself changes, independent of
// whatever T happens to be.
const RecordVersion = 1

// envelope wraps a stored record with its format version.
type envelope[T any] struct {
	Version int `json:"version"`
	Record  T   `json:"record"`
}

// RecordStore persists one JSON file per record, named "{id}.json", under
// a caller-supplied root directory. It is the same shape regardless of
// which record type T is (receipts, grants, spawn records, revocations) —
// no cross-file locking is performed, matching the single-process
// assumption documented at the call site.
type RecordStore[T any] struct {
	dir string
}

// NewRecordStore opens (creating if necessary) a record store rooted at
// dir.
func NewRecordStore[T any](dir string) (*RecordStore[T], error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, xerrors.Wrap(xerrors.KindStorage, "store.NewRecordStore", err)
	}
	return &RecordStore[T]{dir: dir}, nil
}

func (s *RecordStore[T]) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes record under id, overwriting any existing file.
func (s *RecordStore[T]) Save(id string, record T) error {
	const op = "store.RecordStore.Save"
	data, err := json.MarshalIndent(envelope[T]{Version: RecordVersion, Record: record}, "", "  ")
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	if err := os.WriteFile(s.path(id), data, 0644); err != nil {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}

// Load reads the record stored under id. Returns a KindNotFound error if
// absent.
func (s *RecordStore[T]) Load(id string) (T, error) {
	const op = "store.RecordStore.Load"
	var zero T
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, xerrors.New(xerrors.KindNotFound, op, "no record with id "+id)
		}
		return zero, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return env.Record, nil
}

// List enumerates every record ID currently stored.
func (s *RecordStore[T]) List() ([]string, error) {
	const op = "store.RecordStore.List"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}

// Delete removes the record stored under id. Idempotent: deleting an
// already-absent record is not an error.
func (s *RecordStore[T]) Delete(id string) error {
	const op = "store.RecordStore.Delete"
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return xerrors.Wrap(xerrors.KindStorage, op, err)
	}
	return nil
}
