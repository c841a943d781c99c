// Package playback keeps the audio sink fed from the pending queue without
// running ahead of it.
package playback

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/queue"
	"github.com/lexicc/lexicc/internal/text"
	"github.com/lexicc/lexicc/internal/tts"
)

// LowWaterMark is the sink depth below which the scheduler refills.
// At most one unit plays while one more waits.
const LowWaterMark = 2

// ErrorPolicy decides what happens when a single work item fails.
type ErrorPolicy string

const (
	// PolicyAbort returns the first failure to the caller.
	PolicyAbort ErrorPolicy = "abort"

	// PolicySkip logs a failing item and moves on to the next.
	// Only synthesis and decode failures are skipped.
	PolicySkip ErrorPolicy = "skip"
)

// ParseErrorPolicy converts a config value to an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case PolicyAbort, PolicySkip:
		return ErrorPolicy(s), nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("invalid error policy %q (want abort or skip)", s)
	}
}

// Scheduler moves work items from the pending queue into the sink.
type Scheduler struct {
	pending    *queue.Pending
	normalizer *text.Normalizer
	cache      tts.AudioCache
	decoder    tts.Decoder
	sink       tts.Sink
	policy     ErrorPolicy

	skipped int
}

// NewScheduler creates a scheduler. An empty policy means PolicyAbort.
func NewScheduler(
	pending *queue.Pending,
	normalizer *text.Normalizer,
	cache tts.AudioCache,
	decoder tts.Decoder,
	sink tts.Sink,
	policy ErrorPolicy,
) *Scheduler {
	if policy == "" {
		policy = PolicyAbort
	}
	return &Scheduler{
		pending:    pending,
		normalizer: normalizer,
		cache:      cache,
		decoder:    decoder,
		sink:       sink,
		policy:     policy,
	}
}

// Fill appends units to the sink while it holds fewer than LowWaterMark
// units and work is pending. Items are taken strictly in queue order.
// It returns the number of units appended.
func (s *Scheduler) Fill(ctx context.Context) (int, error) {
	appended := 0
	for s.sink.Len() < LowWaterMark && s.pending.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return appended, err
		}

		item, err := s.pending.Pop()
		if err != nil {
			return appended, err
		}

		if err := s.play(ctx, item); err != nil {
			if ctx.Err() != nil {
				return appended, ctx.Err()
			}
			if s.policy == PolicySkip && tts.IsItemError(err) {
				s.skipped++
				log.Warn("Skipping line", "source", item.Source, "line", item.Line, "err", err)
				continue
			}
			return appended, err
		}
		appended++
	}
	return appended, nil
}

func (s *Scheduler) play(ctx context.Context, item tts.WorkItem) error {
	audio, err := s.cache.GetOrSynthesize(ctx, s.normalizer.Markup(item.Text))
	if err != nil {
		return err
	}

	unit, err := s.decoder.Decode(audio)
	if err != nil {
		return err
	}
	unit.Label = fmt.Sprintf("%s:%d", item.Source, item.Line)

	if err := s.sink.Append(unit); err != nil {
		return fmt.Errorf("unable to queue audio: %w", err)
	}

	log.Debug("Queued unit", "unit", unit.Label, "depth", s.sink.Len())
	return nil
}

// Skipped returns how many items were dropped under PolicySkip.
func (s *Scheduler) Skipped() int {
	return s.skipped
}
