package instance

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestGuardFunc(t *testing.T) {
	calls := 0
	g := GuardFunc(func() (func() error, error) {
		calls++
		return nil, ErrRunning
	})

	_, err := g.Acquire()
	if !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFileLockPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicc.lock")
	if got := NewFileLock(path).Path(); got != path {
		t.Errorf("Path() = %s, want %s", got, path)
	}
}

func TestDefaultLockPath(t *testing.T) {
	t.Run("runtime dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		if got := DefaultLockPath(); got != filepath.Join("/run/user/1000", "lexicc.lock") {
			t.Errorf("DefaultLockPath() = %s", got)
		}
	})

	t.Run("temp dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		got := filepath.Base(DefaultLockPath())
		if !strings.HasPrefix(got, "lexicc-") || !strings.HasSuffix(got, ".lock") {
			t.Errorf("DefaultLockPath() = %s", got)
		}
	})
}
