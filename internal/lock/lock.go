package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// LockHeldError is returned when another literasid process owns the data dir.
type LockHeldError struct {
	PID  int
	Path string
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("data dir locked by PID %d (%s)", e.PID, e.Path)
}

// info is the diagnostic payload written into the lock file. The flock is the
// actual exclusion mechanism; the file body only feeds error messages.
type info struct {
	PID     int       `json:"pid"`
	Started time.Time `json:"started"`
}

// Lock represents an acquired data-dir lock file. The SQLite store must not
// be shared between daemons, so exactly one process may hold this.
type Lock struct {
	file *os.File
	path string
}

// Acquire attempts to acquire an exclusive lock on the data directory.
// Returns LockHeldError if another process already holds it.
func Acquire(dataDir string) (*Lock, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "LOCK")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := readInfo(path)
		_ = f.Close()
		return nil, &LockHeldError{PID: holder.PID, Path: path}
	}

	if err := writeInfo(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write lock info: %w", err)
	}
	return &Lock{file: f, path: path}, nil
}

// Release releases the lock and removes the lock file. Safe to call on a nil
// receiver and safe to call twice.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func writeInfo(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	data, err := json.Marshal(info{PID: os.Getpid(), Started: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

func readInfo(path string) info {
	var i info
	data, err := os.ReadFile(path)
	if err != nil {
		return i
	}
	_ = json.Unmarshal(data, &i)
	return i
}
