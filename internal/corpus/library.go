// Package corpus manages the reference recordings: locating them on
// disk, assigning content-derived source IDs, and searching a clip
// against every reference transcript.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/provenant/clipverify/internal/model"
)

// Reference is one trusted recording on disk.
type Reference struct {
	SourceID string
	Name     string
	Path     string
}

// Library scans the reference directory and derives stable source IDs
// from file content, so an unchanged recording keeps its identity across
// restarts and a replaced recording gets a new one.
type Library struct {
	dir        string
	extensions map[string]bool

	mu  sync.Mutex
	ids map[string]idEntry
}

// idEntry memoizes a content hash; it is reused only while the file's
// size and mtime are unchanged.
type idEntry struct {
	size    int64
	modTime time.Time
	id      string
}

// NewLibrary creates a library over the configured reference directory.
func NewLibrary(cfg model.ReferenceConfig) *Library {
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Library{
		dir:        cfg.Dir,
		extensions: exts,
		ids:        make(map[string]idEntry),
	}
}

// Dir returns the reference directory path.
func (l *Library) Dir() string {
	return l.dir
}

// List returns every reference recording, ordered by file name. A
// missing directory is an empty corpus, not an error.
func (l *Library) List() ([]Reference, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reference dir: %w", err)
	}

	var refs []Reference
	for _, entry := range entries {
		if entry.IsDir() || !l.extensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat reference %s: %w", entry.Name(), err)
		}
		path := filepath.Join(l.dir, entry.Name())
		id, err := l.sourceID(path, info)
		if err != nil {
			return nil, err
		}
		refs = append(refs, Reference{SourceID: id, Name: entry.Name(), Path: path})
	}
	return refs, nil
}

// Find returns the reference with the given source ID.
func (l *Library) Find(sourceID string) (Reference, bool) {
	refs, err := l.List()
	if err != nil {
		return Reference{}, false
	}
	for _, r := range refs {
		if r.SourceID == sourceID {
			return r, true
		}
	}
	return Reference{}, false
}

// sourceID returns the hex SHA-256 of the file content, memoized on
// (size, mtime) so unchanged files are not re-hashed per request.
func (l *Library) sourceID(path string, info fs.FileInfo) (string, error) {
	l.mu.Lock()
	cached, ok := l.ids[path]
	l.mu.Unlock()
	if ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached.id, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open reference %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash reference %s: %w", path, err)
	}
	id := hex.EncodeToString(h.Sum(nil))

	l.mu.Lock()
	l.ids[path] = idEntry{size: info.Size(), modTime: info.ModTime(), id: id}
	l.mu.Unlock()

	return id, nil
}
