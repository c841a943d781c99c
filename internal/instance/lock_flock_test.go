//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package instance

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFileLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicc.lock")
	first := NewFileLock(path)
	second := NewFileLock(path)

	release, err := first.Acquire()
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	if _, err := second.Acquire(); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Acquire: expected ErrRunning, got %v", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := release(); err != nil {
		t.Errorf("second release: %v", err)
	}

	releaseSecond, err := second.Acquire()
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	releaseSecond()
}

func TestFileLockMissingDir(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "missing", "lexicc.lock"))
	_, err := lock.Acquire()
	if err == nil || errors.Is(err, ErrRunning) {
		t.Errorf("expected open error, got %v", err)
	}
}
