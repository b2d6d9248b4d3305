package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup targets a row that does not exist.
// Callers branch on it to distinguish "not found" from backend-unreachable.
var ErrNotFound = errors.New("store: not found")

// DB wraps the daemon-owned literasi.db connection.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path with WAL journaling, a busy timeout
// and foreign keys enforced. The pool is capped at one connection: the daemon
// is the sole writer and SQLite serializes writes regardless.
func Open(path string) (*DB, error) {
	const dsnOpts = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", path+dsnOpts)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure,
// e.g. a duplicate username on registration.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
