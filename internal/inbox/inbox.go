// Package inbox implements the durable work queue backed by a directory.
// Each file in the directory is a pending document; documents are ingested
// in path order and removed once all of their lines are queued.
package inbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/queue"
	"github.com/lexicc/lexicc/internal/text"
	"github.com/lexicc/lexicc/internal/tts"
	"golang.org/x/text/unicode/norm"
)

// Document is a single file waiting in the inbox.
type Document struct {
	Path string
}

// Inbox reads documents from a directory.
type Inbox struct {
	dir        string
	normalizer *text.Normalizer
}

// New creates an inbox over dir. The normalizer repairs line structure
// before documents are split.
func New(dir string, normalizer *text.Normalizer) *Inbox {
	return &Inbox{dir: dir, normalizer: normalizer}
}

// Dir returns the inbox directory.
func (ib *Inbox) Dir() string {
	return ib.dir
}

// ListPending returns the documents waiting in the inbox sorted by path.
// Directories and dot files are skipped; dot files are in-flight writes.
func (ib *Inbox) ListPending() ([]Document, error) {
	entries, err := os.ReadDir(ib.dir)
	if err != nil {
		return nil, tts.NewError(tts.KindIngest, "list inbox", err).WithPath(ib.dir)
	}

	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		docs = append(docs, Document{Path: filepath.Join(ib.dir, e.Name())})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

// Ingest splits each document into work items, appends them to pending and
// deletes the document. Documents are handled in the order given. The first
// failure stops ingestion; documents not yet deleted stay in the inbox.
func (ib *Inbox) Ingest(docs []Document, pending *queue.Pending) (int, error) {
	total := 0
	for _, doc := range docs {
		n, err := ib.ingest(doc, pending)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (ib *Inbox) ingest(doc Document, pending *queue.Pending) (int, error) {
	raw, err := os.ReadFile(doc.Path)
	if err != nil {
		return 0, tts.NewError(tts.KindIngest, "read document", err).WithPath(doc.Path)
	}
	if !utf8.Valid(raw) {
		return 0, tts.NewError(tts.KindIngest, "read document", fmt.Errorf("not valid UTF-8")).WithPath(doc.Path)
	}

	content := ib.normalizer.Reflow(norm.NFC.String(string(raw)))
	lines := text.Split(content)

	items := make([]tts.WorkItem, len(lines))
	for i, line := range lines {
		items[i] = tts.WorkItem{Text: line, Source: doc.Path, Line: i + 1}
	}
	pending.Push(items...)

	// Deleting is the commit point: the document is now fully queued.
	if err := os.Remove(doc.Path); err != nil {
		return len(items), tts.NewError(tts.KindIngest, "delete document", err).WithPath(doc.Path)
	}

	log.Info("Ingested document", "path", doc.Path, "items", len(items))
	return len(items), nil
}

// Add places a document into the inbox atomically: content is written to a
// dot file first and renamed into place once complete. The final name is
// prefixed with a UTC timestamp so documents ingest in the order added.
func (ib *Inbox) Add(name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" || base == "-" {
		base = "stdin.txt"
	}
	base = strings.TrimLeft(base, ".")

	file, err := os.CreateTemp(ib.dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("unable to create temp file: %w", err)
	}
	tempPath := file.Name()

	// The temp file's random suffix keeps names unique within one tick.
	unique := strings.TrimPrefix(filepath.Base(tempPath), ".incoming-")
	final := filepath.Join(ib.dir, time.Now().UTC().Format("20060102T150405.000000000Z")+"-"+unique+"-"+base)

	_, err = io.Copy(file, r)
	if err == nil {
		err = file.Sync()
	}
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("unable to write document: %w", err)
	}

	if err := os.Rename(tempPath, final); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("unable to place document: %w", err)
	}
	return final, nil
}
