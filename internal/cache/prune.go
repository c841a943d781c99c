package cache

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/tts"
)

type entry struct {
	path    string
	size    int64
	modTime time.Time
}

// scan lists cache entries in dir. Temp files and names that are not keys
// are skipped.
func scan(dir string) ([]entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, tts.NewError(tts.KindCacheIO, "list entries", err).WithPath(dir)
	}

	entries := make([]entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasSuffix(name, tempSuffix) {
			continue
		}
		if _, ok := ParseKey(name); !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, entry{
			path:    filepath.Join(dir, name),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Scan reports how many entries are in dir and how much space they use.
func Scan(dir string) (Usage, error) {
	entries, err := scan(dir)
	if err != nil {
		return Usage{}, err
	}

	var u Usage
	for _, e := range entries {
		u.Entries++
		u.Bytes += e.size
		if u.Oldest.IsZero() || e.modTime.Before(u.Oldest) {
			u.Oldest = e.modTime
		}
		if e.modTime.After(u.Newest) {
			u.Newest = e.modTime
		}
	}
	return u, nil
}

// Prune removes least recently used entries until the directory holds at
// most maxBytes. A maxBytes of zero or less disables pruning.
func Prune(dir string, maxBytes int64) (removed int, freed int64, err error) {
	if maxBytes <= 0 {
		return 0, 0, nil
	}

	entries, err := scan(dir)
	if err != nil {
		return 0, 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.size
	}
	if total <= maxBytes {
		return 0, 0, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})

	for _, e := range entries {
		if total <= maxBytes {
			break
		}
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return removed, freed, tts.NewError(tts.KindCacheIO, "remove entry", err).WithPath(e.path)
		}
		total -= e.size
		freed += e.size
		removed++
	}

	log.Debug("Pruned cache", "dir", dir, "removed", removed, "freed", freed)
	return removed, freed, nil
}
