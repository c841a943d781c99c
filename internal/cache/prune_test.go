package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEntry(t *testing.T, dir, text string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, KeyOf(text).String())
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	return path
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a", 100, time.Hour)
	writeEntry(t, dir, "b", 50, time.Minute)

	// Neither of these is an entry.
	os.WriteFile(filepath.Join(dir, KeyOf("c").String()+"-123"+tempSuffix), make([]byte, 999), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), make([]byte, 999), 0o644)

	u, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if u.Entries != 2 {
		t.Errorf("Entries = %d, want 2", u.Entries)
	}
	if u.Bytes != 150 {
		t.Errorf("Bytes = %d, want 150", u.Bytes)
	}
	if !u.Oldest.Before(u.Newest) {
		t.Errorf("Oldest %v should be before Newest %v", u.Oldest, u.Newest)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestPrune(t *testing.T) {
	tests := []struct {
		name        string
		maxBytes    int64
		wantRemoved int
		wantFreed   int64
		wantKept    []string
	}{
		{"disabled", 0, 0, 0, []string{"old", "mid", "new"}},
		{"under limit", 1000, 0, 0, []string{"old", "mid", "new"}},
		{"drop oldest", 250, 1, 100, []string{"mid", "new"}},
		{"drop two oldest", 100, 2, 200, []string{"new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			paths := map[string]string{
				"old": writeEntry(t, dir, "old", 100, 3*time.Hour),
				"mid": writeEntry(t, dir, "mid", 100, 2*time.Hour),
				"new": writeEntry(t, dir, "new", 100, time.Hour),
			}

			removed, freed, err := Prune(dir, tt.maxBytes)
			if err != nil {
				t.Fatalf("Prune failed: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
			if freed != tt.wantFreed {
				t.Errorf("freed = %d, want %d", freed, tt.wantFreed)
			}
			for _, name := range tt.wantKept {
				if _, err := os.Stat(paths[name]); err != nil {
					t.Errorf("expected %s to be kept: %v", name, err)
				}
			}
		})
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	oldPath := writeEntry(t, dir, "old", 100, 3*time.Hour)
	newPath := writeEntry(t, dir, "new", 100, time.Hour)

	if _, ok, err := dc.Get(KeyOf("old")); !ok || err != nil {
		t.Fatalf("Get = %v, %v", ok, err)
	}

	if _, _, err := Prune(dir, 100); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if _, err := os.Stat(oldPath); err != nil {
		t.Errorf("recently read entry was pruned: %v", err)
	}
	if _, err := os.Stat(newPath); err == nil {
		t.Error("expected the least recently used entry to be pruned")
	}
}
