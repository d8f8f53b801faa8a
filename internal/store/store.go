// Package store persists vehicle records in SQLite. Records are
// append-only: a row is created once and never updated, so a record's ID
// is stable for its whole lifetime and deletion is the only mutation.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"carspotter/internal/types"
)

// RecordStore is a SQLite-backed vehicle record store. A single
// connection with WAL mode keeps concurrent readers cheap while writes
// serialize through the mutex.
type RecordStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *zap.Logger
}

// Open initializes the SQLite database at the given path, creating the
// parent directory and schema as needed.
func Open(path string, log *zap.Logger) (*RecordStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &types.StorageError{Op: "open", Err: fmt.Errorf("create directory: %w", err)}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &types.StorageError{Op: "open", Err: fmt.Errorf("open database: %w", err)}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set sqlite journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set sqlite synchronous=NORMAL", zap.Error(err))
	}

	s := &RecordStore{db: db, dbPath: path, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("record store opened", zap.String("path", path))
	return s, nil
}

func (s *RecordStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identification TEXT NOT NULL,
		identity_key TEXT NOT NULL,
		specification TEXT NOT NULL,
		image BLOB,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_vehicles_identity ON vehicles(identity_key);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return &types.StorageError{Op: "open", Err: fmt.Errorf("create schema: %w", err)}
	}
	return nil
}

// Create persists a new record and returns it with its assigned ID.
func (s *RecordStore) Create(ident types.VehicleIdentification, spec types.VehicleSpecification, image []byte) (*types.VehicleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identJSON, err := json.Marshal(ident)
	if err != nil {
		return nil, &types.StorageError{Op: "create", Err: fmt.Errorf("marshal identification: %w", err)}
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, &types.StorageError{Op: "create", Err: fmt.Errorf("marshal specification: %w", err)}
	}

	result, err := s.db.Exec(
		"INSERT INTO vehicles (identification, identity_key, specification, image) VALUES (?, ?, ?, ?)",
		string(identJSON), ident.IdentityKey(), string(specJSON), image,
	)
	if err != nil {
		return nil, &types.StorageError{Op: "create", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, &types.StorageError{Op: "create", Err: err}
	}

	s.log.Debug("record created", zap.Int64("id", id), zap.String("identity", ident.IdentityKey()))
	return &types.VehicleRecord{
		ID:             id,
		Identification: ident,
		Specification:  spec,
		Image:          image,
	}, nil
}

// Get loads one record by ID. A missing ID returns (nil, nil).
func (s *RecordStore) Get(id int64) (*types.VehicleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT id, identification, specification, image FROM vehicles WHERE id = ?", id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StorageError{Op: "get", Err: err}
	}
	return rec, nil
}

// ListAll returns every record ordered by ascending ID, oldest first.
func (s *RecordStore) ListAll() ([]types.VehicleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, identification, specification, image FROM vehicles ORDER BY id ASC")
	if err != nil {
		return nil, &types.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var records []types.VehicleRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &types.StorageError{Op: "list", Err: err}
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Op: "list", Err: err}
	}
	return records, nil
}

// FindByIdentity returns the first stored record for the same vehicle, or
// (nil, nil) when none exists.
func (s *RecordStore) FindByIdentity(ident types.VehicleIdentification) (*types.VehicleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		"SELECT id, identification, specification, image FROM vehicles WHERE identity_key = ? ORDER BY id ASC LIMIT 1",
		ident.IdentityKey(),
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StorageError{Op: "find", Err: err}
	}
	return rec, nil
}

// DeleteByID removes a record. Deleting an absent ID is a no-op; the
// returned bool reports whether a row was actually removed.
func (s *RecordStore) DeleteByID(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM vehicles WHERE id = ?", id)
	if err != nil {
		return false, &types.StorageError{Op: "delete", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, &types.StorageError{Op: "delete", Err: err}
	}
	if affected > 0 {
		s.log.Debug("record deleted", zap.Int64("id", id))
	}
	return affected > 0, nil
}

// Count returns the number of stored records.
func (s *RecordStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vehicles").Scan(&n); err != nil {
		return 0, &types.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Close(); err != nil {
		return &types.StorageError{Op: "close", Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*types.VehicleRecord, error) {
	var rec types.VehicleRecord
	var identJSON, specJSON string
	if err := row.Scan(&rec.ID, &identJSON, &specJSON, &rec.Image); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(identJSON), &rec.Identification); err != nil {
		return nil, fmt.Errorf("unmarshal identification for record %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(specJSON), &rec.Specification); err != nil {
		return nil, fmt.Errorf("unmarshal specification for record %d: %w", rec.ID, err)
	}
	return &rec, nil
}
