// Package store persists instruments, cash accounts, expenses and fetched
// exchange rates in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/theirongolddev/nestegg/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound indicates no row matched.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidRecord indicates a record failed validation before insert.
	ErrInvalidRecord = errors.New("store: invalid record")
)

// Store provides SQLite-backed record storage.
type Store struct {
	db *sql.DB
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "nestegg")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "nestegg")
}

// DefaultPath returns the default database path.
func DefaultPath() string {
	return filepath.Join(DataDir(), "nestegg.db")
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadRecords reads every instrument, account and expense.
func (s *Store) LoadRecords() (model.Records, error) {
	var rec model.Records
	var err error
	if rec.Instruments, err = s.ListInstruments(); err != nil {
		return rec, err
	}
	if rec.Accounts, err = s.ListAccounts(); err != nil {
		return rec, err
	}
	if rec.Expenses, err = s.ListExpenses(); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Store) exec(b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return s.db.Exec(query, args...)
}

func (s *Store) query(b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return s.db.Query(query, args...)
}

// deleteByID removes one row, returning ErrNotFound when nothing matched.
func (s *Store) deleteByID(table, id string) error {
	res, err := s.exec(squirrel.Delete(table).Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, table, id)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
