package inbox

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch sends on the returned channel whenever a file is created, written
// or renamed in the inbox. Signals coalesce: the channel never holds more
// than one. The watcher stops when ctx is done.
func (ib *Inbox) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if err := watcher.Add(ib.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", ib.dir, err)
	}

	wake := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				log.Debug("fsnotify dir unwatched", "dir", ib.dir)
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
					continue
				}
				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug("fsnotify error", "dir", ib.dir, "error", err)
			}
		}
	}()

	log.Debug("fsnotify watching dir", "dir", ib.dir)
	return wake, nil
}
