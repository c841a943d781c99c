package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/lexicc/lexicc/internal/tts"
)

// ErrSinkClosed is returned when appending to a closed sink.
var ErrSinkClosed = errors.New("sink is closed")

// SinkConfig contains configuration for the playback sink.
type SinkConfig struct {
	SampleRate int     // Rate of the decoded units
	Channels   int     // 1 = mono, 2 = stereo
	Speed      float64 // Playback speed; also shifts pitch

	// BufferSize is the device buffer; zero lets oto choose.
	BufferSize time.Duration
}

// DefaultSinkConfig returns the default sink configuration.
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		SampleRate: 24000,
		Channels:   1,
		Speed:      1.15,
	}
}

// validateConfig validates the sink configuration.
func validateConfig(config SinkConfig) error {
	if config.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}
	if config.Speed < 0.25 || config.Speed > 4.0 {
		return fmt.Errorf("speed must be between 0.25 and 4.0, got %.2f", config.Speed)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// deviceRate is the rate the device is opened at. Playing samples faster
// than they were recorded speeds speech up.
func deviceRate(config SinkConfig) int {
	return int(math.Round(float64(config.SampleRate) * config.Speed))
}

// Sink plays queued units one after another on the audio device.
type Sink struct {
	context *oto.Context

	sampleRate int
	channels   int

	// queue[0] is the unit currently playing.
	mu     sync.Mutex
	queue  []tts.Unit
	closed bool

	wake      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	pollInterval time.Duration
}

// NewSink opens the audio device and starts the playback goroutine.
func NewSink(config SinkConfig) (*Sink, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   deviceRate(config),
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, tts.NewError(tts.KindSetup, "open audio device", err)
	}
	<-readyChan

	s := &Sink{
		context:      ctx,
		sampleRate:   config.SampleRate,
		channels:     config.Channels,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: 20 * time.Millisecond,
	}

	s.wg.Add(1)
	go s.run()

	log.Debug("Audio device opened", "deviceRate", op.SampleRate, "channels", op.ChannelCount)
	return s, nil
}

// Append queues a unit for playback.
func (s *Sink) Append(unit tts.Unit) error {
	if unit.SampleRate != s.sampleRate || unit.Channels != s.channels {
		return fmt.Errorf("%w: unit is %d Hz/%d ch, sink is %d Hz/%d ch",
			tts.ErrFormatMismatch, unit.SampleRate, unit.Channels, s.sampleRate, s.channels)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSinkClosed
	}
	s.queue = append(s.queue, unit)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Len returns the number of units queued, including the one playing.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Empty reports whether nothing is queued or playing.
func (s *Sink) Empty() bool {
	return s.Len() == 0
}

// Close stops playback and drops anything still queued.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.wg.Wait()

		s.mu.Lock()
		s.queue = nil
		s.mu.Unlock()
	})
	return nil
}

func (s *Sink) front() (tts.Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return tts.Unit{}, false
	}
	return s.queue[0], true
}

func (s *Sink) pop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > 0 {
		s.queue[0] = tts.Unit{}
		s.queue = s.queue[1:]
	}
}

func (s *Sink) run() {
	defer s.wg.Done()

	for {
		unit, ok := s.front()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		if !s.play(unit) {
			return
		}
		s.pop()
	}
}

// play blocks until unit has finished. It returns false if the sink was
// closed mid-playback.
func (s *Sink) play(unit tts.Unit) bool {
	// The reader keeps unit.Audio referenced until the player is closed.
	player := s.context.NewPlayer(bytes.NewReader(unit.Audio))
	defer player.Close()

	player.Play()
	log.Debug("Playing", "unit", unit.Label, "bytes", len(unit.Audio))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-s.done:
			player.Pause()
			return false
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		log.Warn("Playback error", "unit", unit.Label, "err", err)
	}
	return true
}

var _ tts.Sink = (*Sink)(nil)
