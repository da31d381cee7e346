// Package store implements the transcript store: a layered
// (memory + disk) cache of reference transcripts keyed by source ID,
// with single-flight computation so concurrent requests for the same
// reference invoke the transcription collaborator exactly once.
package store

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/model"
)

// Builder produces a transcript for a source on a cache miss. It is the
// expensive path (external transcription), so the store calls it at most
// once per source ID at a time.
type Builder func(ctx context.Context) (*model.Transcript, error)

// flight is an in-progress build whose result concurrent callers share.
type flight struct {
	done       chan struct{}
	transcript *model.Transcript
	err        error
}

// TranscriptStore caches reference transcripts. Reads are lock-free once
// an entry is in the memory layer; disk hits are promoted to memory.
// Build failures are never cached, so a transient collaborator failure
// does not poison later requests.
type TranscriptStore struct {
	memory *gocache.Cache
	disk   *diskCache

	mu       sync.Mutex
	inflight map[string]*flight

	log zerolog.Logger
}

// New creates a transcript store backed by the given cache directory.
func New(dir string, logger zerolog.Logger) *TranscriptStore {
	return &TranscriptStore{
		memory:   gocache.New(gocache.NoExpiration, 0),
		disk:     newDiskCache(dir),
		inflight: make(map[string]*flight),
		log:      logger.With().Str("component", "transcript_store").Logger(),
	}
}

// GetOrBuild returns the cached transcript for sourceID, or builds it.
// Concurrent callers for the same sourceID block on the one in-flight
// build and share its outcome.
func (s *TranscriptStore) GetOrBuild(ctx context.Context, sourceID string, build Builder) (*model.Transcript, error) {
	if t, ok := s.lookup(sourceID); ok {
		return t, nil
	}

	s.mu.Lock()
	if f, ok := s.inflight[sourceID]; ok {
		s.mu.Unlock()
		select {
		case <-f.done:
			return f.transcript, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	// Re-check under the lock: a flight may have completed between the
	// fast-path lookup and acquiring the lock.
	if t, ok := s.lookup(sourceID); ok {
		s.mu.Unlock()
		return t, nil
	}
	f := &flight{done: make(chan struct{})}
	s.inflight[sourceID] = f
	s.mu.Unlock()

	t, err := build(ctx)
	if err == nil {
		s.put(sourceID, t)
	} else {
		s.log.Warn().Err(err).Str("source_id", sourceID).Msg("transcript build failed")
	}

	f.transcript, f.err = t, err
	s.mu.Lock()
	delete(s.inflight, sourceID)
	s.mu.Unlock()
	close(f.done)

	return t, err
}

// Get returns the cached transcript without building.
func (s *TranscriptStore) Get(sourceID string) (*model.Transcript, bool) {
	return s.lookup(sourceID)
}

// Cached reports whether a transcript for sourceID exists in any layer.
func (s *TranscriptStore) Cached(sourceID string) bool {
	if _, ok := s.memory.Get(sourceID); ok {
		return true
	}
	return s.disk.Exists(sourceID)
}

// Evict removes the entry for sourceID from both layers. Used when a
// reference recording is deleted or replaced.
func (s *TranscriptStore) Evict(sourceID string) error {
	s.memory.Delete(sourceID)
	if err := s.disk.Delete(sourceID); err != nil {
		return err
	}
	s.log.Info().Str("source_id", sourceID).Msg("transcript evicted")
	return nil
}

// ClearAll removes every cached transcript.
func (s *TranscriptStore) ClearAll() error {
	s.memory.Flush()
	return s.disk.Clear()
}

func (s *TranscriptStore) lookup(sourceID string) (*model.Transcript, bool) {
	if v, ok := s.memory.Get(sourceID); ok {
		return v.(*model.Transcript), true
	}
	if t, ok := s.disk.Get(sourceID); ok {
		// Promote to the memory layer.
		s.memory.Set(sourceID, t, gocache.NoExpiration)
		return t, true
	}
	return nil, false
}

func (s *TranscriptStore) put(sourceID string, t *model.Transcript) {
	s.memory.Set(sourceID, t, gocache.NoExpiration)
	if err := s.disk.Set(sourceID, t); err != nil {
		// Memory layer still serves this process; disk persistence is
		// best-effort and will be retried on the next cold build.
		s.log.Warn().Err(err).Str("source_id", sourceID).Msg("disk cache write failed")
	}
}
