package tts

import (
	"context"
)

// WorkItem is one speakable line of text queued for synthesis.
type WorkItem struct {
	// Text is the trimmed line content.
	Text string

	// Source is the path of the document the line came from.
	Source string

	// Line is the 1-based position among the document's kept lines.
	Line int
}

// Unit is a decoded block of audio ready to hand to a Sink.
// Audio is signed 16-bit little-endian PCM.
type Unit struct {
	Audio      []byte
	SampleRate int
	Channels   int

	// Label identifies the unit in logs.
	Label string
}

// Synthesizer defines the contract for the external speech service.
type Synthesizer interface {
	// Synthesize converts SSML markup into an encoded audio stream.
	// The full stream is returned; partial results are never returned.
	Synthesize(ctx context.Context, markup string) ([]byte, error)
}

// AudioCache resolves normalized text to audio, synthesizing on a miss.
type AudioCache interface {
	GetOrSynthesize(ctx context.Context, normalized string) ([]byte, error)
}

// Decoder turns encoded audio into a playable unit.
type Decoder interface {
	Decode(data []byte) (Unit, error)
}

// Sink defines the contract for the playback device.
// Implementations play appended units in order on their own goroutine.
type Sink interface {
	// Append queues a unit after any already queued.
	Append(unit Unit) error

	// Len returns the number of units queued or playing.
	Len() int

	// Empty reports whether nothing is queued or playing.
	Empty() bool

	// Close stops playback and releases the device.
	Close() error
}
