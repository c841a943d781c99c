// Package daemon runs the control loop: ingest the inbox, keep the sink fed
// and exit once there is nothing left to read or play.
package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/inbox"
	"github.com/lexicc/lexicc/internal/instance"
	"github.com/lexicc/lexicc/internal/playback"
	"github.com/lexicc/lexicc/internal/queue"
	"github.com/lexicc/lexicc/internal/tts"
)

// DefaultPollInterval separates loop iterations when nothing wakes the loop
// earlier.
const DefaultPollInterval = time.Second

// Daemon owns the control loop. It is not safe for concurrent use.
type Daemon struct {
	inbox        *inbox.Inbox
	pending      *queue.Pending
	scheduler    *playback.Scheduler
	sink         tts.Sink
	pollInterval time.Duration
}

// New creates a daemon. A zero poll interval means DefaultPollInterval.
func New(ib *inbox.Inbox, pending *queue.Pending, scheduler *playback.Scheduler, sink tts.Sink, pollInterval time.Duration) *Daemon {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Daemon{
		inbox:        ib,
		pending:      pending,
		scheduler:    scheduler,
		sink:         sink,
		pollInterval: pollInterval,
	}
}

// Run loops until the inbox, the pending queue and the sink are all empty
// at the start of an iteration. Cancelling ctx stops the loop and returns
// nil; documents already ingested stay deleted.
func (d *Daemon) Run(ctx context.Context) error {
	// Stops the inbox watcher on every return path.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wake, err := d.inbox.Watch(ctx)
	if err != nil {
		log.Warn("Inbox watch unavailable, polling only", "dir", d.inbox.Dir(), "err", err)
	}

	timer := time.NewTimer(d.pollInterval)
	defer timer.Stop()

	for {
		docs, err := d.inbox.ListPending()
		if err != nil {
			return err
		}

		if len(docs) == 0 && d.pending.Len() == 0 && d.sink.Empty() {
			stats := d.pending.Stats()
			log.Info("Nothing left to play, exiting",
				"lines", stats.TotalDequeued,
				"peak", stats.PeakSize,
				"skipped", d.scheduler.Skipped(),
			)
			return nil
		}

		if _, err := d.inbox.Ingest(docs, d.pending); err != nil {
			return err
		}

		if _, err := d.scheduler.Fill(ctx); err != nil {
			if ctx.Err() != nil {
				return d.stopped()
			}
			return err
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d.pollInterval)

		select {
		case <-ctx.Done():
			return d.stopped()
		case <-timer.C:
		case <-wake:
			log.Debug("Inbox changed")
		}
	}
}

func (d *Daemon) stopped() error {
	log.Info("Stopping", "pending", d.pending.Len())
	return nil
}

// Launch acquires guard and, only if that succeeds, calls build to prepare
// state and collaborators before running the returned daemon. When another
// instance holds the guard Launch returns nil without calling build.
func Launch(ctx context.Context, guard instance.Guard, build func(context.Context) (*Daemon, func() error, error)) error {
	release, err := guard.Acquire()
	if errors.Is(err, instance.ErrRunning) {
		log.Info("Another instance is already running")
		return nil
	}
	if err != nil {
		return tts.NewError(tts.KindSetup, "acquire instance guard", err)
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("Could not release instance guard", "err", err)
		}
	}()

	d, cleanup, err := build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Warn("Cleanup failed", "err", err)
		}
	}()

	return d.Run(ctx)
}
