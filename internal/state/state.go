// Package state manages the on-disk state root holding the inbox and the
// audio cache.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexicc/lexicc/internal/tts"
	"github.com/mitchellh/go-homedir"
)

const (
	appName  = "lexicc"
	inboxDir = "inbox"
	audioDir = "audio"
)

// Dirs holds the resolved state directories.
type Dirs struct {
	Root  string
	Inbox string
	Audio string
}

// DefaultRoot returns $XDG_STATE_HOME/lexicc, falling back to
// ~/.local/state/lexicc.
func DefaultRoot() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to find home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", appName), nil
}

// Layout returns the directories under root without touching the disk.
func Layout(root string) Dirs {
	return Dirs{
		Root:  root,
		Inbox: filepath.Join(root, inboxDir),
		Audio: filepath.Join(root, audioDir),
	}
}

// Setup ensures the inbox and audio directories exist under root.
// A leading ~ in root is expanded. Setup is idempotent.
func Setup(root string) (Dirs, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return Dirs{}, tts.NewError(tts.KindSetup, "resolve state dir", err).WithPath(root)
	}

	dirs := Layout(expanded)
	for _, dir := range []string{dirs.Inbox, dirs.Audio} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Dirs{}, tts.NewError(tts.KindSetup, "create state dir", err).WithPath(dir)
		}
	}
	return dirs, nil
}
