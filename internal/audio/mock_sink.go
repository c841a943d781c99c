package audio

import (
	"sync"
	"time"

	"github.com/lexicc/lexicc/internal/tts"
)

// MockSink implements tts.Sink for testing without an audio device.
// Units stay queued until Finish is called, or, when a play duration is
// set, until that much time has passed for each unit in turn.
type MockSink struct {
	mu       sync.Mutex
	queue    []tts.Unit
	appended []tts.Unit
	maxLen   int
	closed   bool

	// AppendErr, when set, is returned by Append.
	AppendErr error

	playDuration time.Duration
	done         chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// NewMockSink creates a sink whose units finish only via Finish.
func NewMockSink() *MockSink {
	return &MockSink{done: make(chan struct{})}
}

// NewPlayingMockSink creates a sink that plays each unit for d.
func NewPlayingMockSink(d time.Duration) *MockSink {
	ms := NewMockSink()
	ms.playDuration = d
	ms.wg.Add(1)
	go ms.simulatePlayback()
	return ms
}

// Append implements tts.Sink.
func (ms *MockSink) Append(unit tts.Unit) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.AppendErr != nil {
		return ms.AppendErr
	}
	if ms.closed {
		return ErrSinkClosed
	}
	ms.queue = append(ms.queue, unit)
	ms.appended = append(ms.appended, unit)
	if len(ms.queue) > ms.maxLen {
		ms.maxLen = len(ms.queue)
	}
	return nil
}

// Len implements tts.Sink.
func (ms *MockSink) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.queue)
}

// Empty implements tts.Sink.
func (ms *MockSink) Empty() bool {
	return ms.Len() == 0
}

// Close implements tts.Sink.
func (ms *MockSink) Close() error {
	ms.closeOnce.Do(func() {
		ms.mu.Lock()
		ms.closed = true
		ms.mu.Unlock()
		close(ms.done)
		ms.wg.Wait()
	})
	return nil
}

// Finish marks up to n units at the head of the queue as played.
func (ms *MockSink) Finish(n int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if n > len(ms.queue) {
		n = len(ms.queue)
	}
	ms.queue = ms.queue[n:]
}

// Appended returns every unit ever appended, in order.
func (ms *MockSink) Appended() []tts.Unit {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]tts.Unit, len(ms.appended))
	copy(out, ms.appended)
	return out
}

// MaxLen returns the largest queue length observed.
func (ms *MockSink) MaxLen() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.maxLen
}

func (ms *MockSink) simulatePlayback() {
	defer ms.wg.Done()

	ticker := time.NewTicker(ms.playDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.Finish(1)
		}
	}
}

var _ tts.Sink = (*MockSink)(nil)
