// Package instance ensures a single daemon runs per user.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRunning is returned by Acquire when another process holds the guard.
var ErrRunning = errors.New("another instance is already running")

// Guard is acquired once at startup. The returned release function gives
// the guard up; it is safe to call more than once.
type Guard interface {
	Acquire() (release func() error, err error)
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func() (func() error, error)

// Acquire implements Guard.
func (f GuardFunc) Acquire() (func() error, error) {
	return f()
}

// FileLock is a Guard backed by an advisory lock on a file.
type FileLock struct {
	path string
}

// NewFileLock creates a guard on path. The file is created on Acquire.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// DefaultLockPath returns the lock file location. It lives in the runtime
// directory, not the state root, so checking for a running instance
// creates nothing under the state root.
func DefaultLockPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "lexicc.lock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("lexicc-%d.lock", os.Getuid()))
}

var _ Guard = (*FileLock)(nil)
