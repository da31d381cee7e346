package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provenant/clipverify/internal/model"
)

// diskCache persists transcripts as one JSON file per source ID. Entries
// carry no TTL: a reference transcript is immutable, and a changed
// recording produces a new source ID rather than an in-place update.
type diskCache struct {
	dir string
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{dir: dir}
}

// Get loads the transcript for sourceID, if present and readable.
func (c *diskCache) Get(sourceID string) (*model.Transcript, bool) {
	data, err := os.ReadFile(c.path(sourceID))
	if err != nil {
		return nil, false
	}

	var t model.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		// Corrupt entry; treat as a miss so it gets rebuilt.
		_ = os.Remove(c.path(sourceID))
		return nil, false
	}
	return &t, true
}

// Set writes the transcript atomically via a temp file rename.
func (c *diskCache) Set(sourceID string, t *model.Transcript) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := c.path(sourceID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

// Exists reports whether an entry is present without loading it.
func (c *diskCache) Exists(sourceID string) bool {
	_, err := os.Stat(c.path(sourceID))
	return err == nil
}

// Delete removes the entry for sourceID, if any.
func (c *diskCache) Delete(sourceID string) error {
	err := os.Remove(c.path(sourceID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every cached transcript file.
func (c *diskCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *diskCache) path(sourceID string) string {
	return filepath.Join(c.dir, sourceID+".json")
}
