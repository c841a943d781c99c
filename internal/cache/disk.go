package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/tts"
)

// DiskCache keeps one immutable file per key under a directory.
type DiskCache struct {
	basePath string
}

// NewDiskCache creates a disk cache rooted at basePath, creating it if needed.
func NewDiskCache(basePath string) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, tts.NewError(tts.KindCacheIO, "create cache directory", err).WithPath(basePath)
	}
	return &DiskCache{basePath: basePath}, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string {
	return dc.basePath
}

// Path returns the file path for key.
func (dc *DiskCache) Path(key Key) string {
	return filepath.Join(dc.basePath, key.String())
}

// Get reads the entry for key. A missing entry is not an error.
// A hit refreshes the file's modification time so the pruner sees it as
// recently used.
func (dc *DiskCache) Get(key Key) ([]byte, bool, error) {
	path := dc.Path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tts.NewError(tts.KindCacheIO, "read entry", err).WithPath(path)
	}

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		log.Debug("Could not touch cache entry", "path", path, "err", err)
	}

	return data, true, nil
}

// Put writes data as the entry for key. The write goes to a temp file in the
// same directory which is then renamed, so readers never see a partial entry.
func (dc *DiskCache) Put(key Key, data []byte) error {
	path := dc.Path(key)
	if err := dc.writeFile(path, data); err != nil {
		return tts.NewError(tts.KindCacheIO, "write entry", err).WithPath(path)
	}
	return nil
}

func (dc *DiskCache) writeFile(path string, data []byte) error {
	file, err := os.CreateTemp(dc.basePath, filepath.Base(path)+"-*"+tempSuffix)
	if err != nil {
		return err
	}
	tempPath := file.Name()

	_, err = file.Write(data)
	if err == nil {
		err = file.Sync()
	}
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
