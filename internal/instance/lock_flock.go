//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package instance

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"
)

// Acquire takes an exclusive non-blocking flock on the lock file.
// The lock is released by the kernel if the process dies.
func (l *FileLock) Acquire() (func() error, error) {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrRunning
		}
		return nil, fmt.Errorf("unable to lock %s: %w", l.path, err)
	}

	// Record the owner for anyone inspecting the file.
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	var once sync.Once
	var releaseErr error
	release := func() error {
		once.Do(func() {
			if err := unix.Flock(int(file.Fd()), unix.LOCK_UN); err != nil {
				releaseErr = err
			}
			if err := file.Close(); err != nil && releaseErr == nil {
				releaseErr = err
			}
		})
		return releaseErr
	}
	return release, nil
}
