package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// keyLen is the length of a key rendered as a file name.
const keyLen = 16

// tempSuffix marks in-flight writes; such files are never entries.
const tempSuffix = ".tmp"

// Key is the content digest of a normalized text.
type Key uint64

// KeyOf computes the cache key for normalized text.
func KeyOf(normalized string) Key {
	return Key(xxhash.Sum64String(normalized))
}

// String renders the key as the entry's file name.
func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// ParseKey parses an entry file name back into a key.
func ParseKey(name string) (Key, bool) {
	if len(name) != keyLen {
		return 0, false
	}
	v, err := strconv.ParseUint(name, 16, 64)
	if err != nil {
		return 0, false
	}
	return Key(v), true
}

// Stats holds cache counters for one process lifetime.
type Stats struct {
	Hits         int64
	Misses       int64
	BytesWritten int64

	// SynthesisTime is the total time spent waiting on the speech service.
	SynthesisTime time.Duration
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Usage describes what is on disk.
type Usage struct {
	Entries int
	Bytes   int64
	Oldest  time.Time
	Newest  time.Time
}
