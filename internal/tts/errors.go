package tts

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrEmptyAudio indicates the synthesis service returned no audio.
	ErrEmptyAudio = errors.New("synthesis returned no audio")

	// ErrQueueEmpty indicates the pending queue has no items.
	ErrQueueEmpty = errors.New("pending queue is empty")

	// ErrFormatMismatch indicates decoded audio does not match the sink format.
	ErrFormatMismatch = errors.New("audio format does not match output")
)

// ErrorKind identifies which stage of the pipeline failed.
type ErrorKind string

const (
	// KindSetup covers state directories, the audio device and the guard.
	KindSetup ErrorKind = "SETUP"

	// KindIngest covers reading and deleting inbox documents.
	KindIngest ErrorKind = "INGEST"

	// KindSynthesis covers calls to the speech service.
	KindSynthesis ErrorKind = "SYNTHESIS"

	// KindCacheIO covers reading and writing cache entries.
	KindCacheIO ErrorKind = "CACHE_IO"

	// KindDecode covers malformed audio.
	KindDecode ErrorKind = "DECODE"
)

// Error is a pipeline error tagged with the stage it came from.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new pipeline error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPath attaches the file the error relates to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// IsItemError returns true if the error is confined to a single work item
// and the remaining queue can still be played.
func IsItemError(err error) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	switch te.Kind {
	case KindSynthesis, KindDecode:
		return true
	default:
		return false
	}
}
