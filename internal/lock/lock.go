// Package lock provides advisory file locks that keep two conductor
// processes from rewriting the same output directory at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock is an flock(2) lock on <dir>/locks/<operation>.lock.
type Lock struct {
	operation string
	path      string
	file      *os.File
}

// New creates a lock for operation inside dir, normally the project's output
// directory.
func New(dir, operation string) *Lock {
	return &Lock{
		operation: operation,
		path:      filepath.Join(dir, "locks", operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("another %s operation is already running: %w", l.operation, ErrLocked)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for whoever finds a stale lock file.
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release drops the lock and removes the lock file. Releasing a lock that
// is not held is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		l.file = nil
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}

// WithLock runs fn while holding the lock for operation in dir.
func WithLock(dir, operation string, fn func() error) error {
	lock := New(dir, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
