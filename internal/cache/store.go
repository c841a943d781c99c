package cache

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/tts"
)

// Store resolves normalized text to audio, consulting the disk cache before
// calling the synthesizer.
type Store struct {
	disk  *DiskCache
	synth tts.Synthesizer

	mu    sync.Mutex
	stats Stats
}

// NewStore creates a store over the cache directory dir.
func NewStore(dir string, synth tts.Synthesizer) (*Store, error) {
	disk, err := NewDiskCache(dir)
	if err != nil {
		return nil, err
	}
	return &Store{disk: disk, synth: synth}, nil
}

// GetOrSynthesize returns the audio for normalized text. On a hit no
// external call is made. On a miss the synthesizer is called once and the
// full result is persisted before it is returned; failures leave nothing
// behind.
func (s *Store) GetOrSynthesize(ctx context.Context, normalized string) ([]byte, error) {
	key := KeyOf(normalized)

	data, ok, err := s.disk.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		s.mu.Lock()
		s.stats.Hits++
		s.mu.Unlock()
		log.Debug("Cache hit", "key", key, "size", len(data))
		return data, nil
	}

	log.Debug("Cache miss", "key", key)
	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()

	start := time.Now()
	audio, err := s.synth.Synthesize(ctx, normalized)
	elapsed := time.Since(start)
	if err != nil {
		return nil, tts.NewError(tts.KindSynthesis, "synthesize", err)
	}
	if len(audio) == 0 {
		return nil, tts.NewError(tts.KindSynthesis, "synthesize", tts.ErrEmptyAudio)
	}

	if err := s.disk.Put(key, audio); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stats.BytesWritten += int64(len(audio))
	s.stats.SynthesisTime += elapsed
	s.mu.Unlock()

	log.Info("Synthesized", "key", key, "audioBytes", len(audio), "duration", elapsed)
	return audio, nil
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.disk.Dir()
}

var _ tts.AudioCache = (*Store)(nil)
