// Package engine orchestrates a verification request end to end:
// transcribe the clip, search the reference corpus, run the speaker
// check on the best match, classify, and cache the result.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/corpus"
	"github.com/provenant/clipverify/internal/metrics"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/store"
	"github.com/provenant/clipverify/internal/transcribe"
	"github.com/provenant/clipverify/internal/worker"
)

// ReferenceLister enumerates the trusted reference recordings.
type ReferenceLister interface {
	List() ([]corpus.Reference, error)
}

// SpeakerVerifier runs the speaker-identity check for one match.
type SpeakerVerifier interface {
	Verify(ctx context.Context, clipPath, refPath string, m *model.MatchCandidate, threshold float64) model.SpeakerCheck
}

// Deps are the engine's collaborators, injected so tests can substitute
// fakes for the external ones.
type Deps struct {
	Store       *store.TranscriptStore
	Transcriber transcribe.Transcriber
	Library     ReferenceLister
	Searcher    *corpus.Searcher
	Speaker     SpeakerVerifier
	Pool        *worker.Pool
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// Engine is the hybrid verification engine.
type Engine struct {
	cfg         *model.Config
	store       *store.TranscriptStore
	transcriber transcribe.Transcriber
	library     ReferenceLister
	searcher    *corpus.Searcher
	speaker     SpeakerVerifier
	pool        *worker.Pool
	results     *gocache.Cache
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// New assembles the engine.
func New(cfg *model.Config, deps Deps) *Engine {
	return &Engine{
		cfg:         cfg,
		store:       deps.Store,
		transcriber: deps.Transcriber,
		library:     deps.Library,
		searcher:    deps.Searcher,
		speaker:     deps.Speaker,
		pool:        deps.Pool,
		results:     gocache.New(cfg.Cache.ResultTTL, cfg.Cache.ResultTTL),
		metrics:     deps.Metrics,
		log:         deps.Logger.With().Str("component", "engine").Logger(),
	}
}

// VerifyClip runs the full verification flow for one clip. The returned
// result is cached under its verification ID for later retrieval.
// Repeated calls with the same inputs produce the same classification.
func (e *Engine) VerifyClip(ctx context.Context, clipPath, clipName string) (*model.VerificationResult, error) {
	info, err := os.Stat(clipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: clip file is empty", model.ErrInvalidInput)
	}

	start := time.Now()
	verificationID := uuid.NewString()
	log := e.log.With().Str("verification_id", verificationID).Str("clip", clipName).Logger()

	clip, err := e.transcriber.Transcribe(ctx, clipPath)
	if err != nil {
		return nil, err
	}
	e.metrics.TranscriptionsTotal.Inc()
	// Clip transcripts are request-scoped and never enter the reference
	// store, so the verification ID doubles as their source ID.
	clip.SourceID = verificationID
	clip.SourceName = clipName
	log.Info().Int("words", clip.WordCount()).Float64("duration", clip.Duration).Msg("clip transcribed")

	refs, err := e.library.List()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	if len(refs) == 0 {
		return e.finish(verificationID, start, &model.VerificationResult{
			Reason:         model.ErrNoReferences.Error(),
			ClipTranscript: clip,
		}), nil
	}

	transcripts, paths, err := e.loadReferences(ctx, refs, log)
	if err != nil {
		return nil, err
	}

	matches := e.searcher.Search(ctx, clip, transcripts, e.cfg.Thresholds.Content)
	if len(matches) == 0 {
		return e.finish(verificationID, start, &model.VerificationResult{
			Reason:         "no reference matched above the content threshold",
			ClipTranscript: clip,
		}), nil
	}

	best := matches[0]
	check := e.speaker.Verify(ctx, clipPath, paths[best.SourceID], &best, e.cfg.Thresholds.Speaker)
	e.recordSpeakerCheck(check)

	return e.finish(verificationID, start, &model.VerificationResult{
		Matches:        matches,
		BestMatch:      &best,
		SpeakerCheck:   &check,
		ClipTranscript: clip,
		LedgerLookupID: best.SourceID,
	}), nil
}

// finish classifies, stamps, caches, and records the result.
func (e *Engine) finish(verificationID string, start time.Time, r *model.VerificationResult) *model.VerificationResult {
	r.VerificationID = verificationID
	r.Type, r.Verified = Classify(r.BestMatch, r.SpeakerCheck)
	r.ContentThreshold = e.cfg.Thresholds.Content
	r.SpeakerThreshold = e.cfg.Thresholds.Speaker
	r.Timestamp = time.Now().UTC()

	e.results.Set(verificationID, r, gocache.DefaultExpiration)
	e.metrics.RecordVerification(string(r.Type), time.Since(start))
	e.log.Info().
		Str("verification_id", verificationID).
		Str("type", string(r.Type)).
		Bool("verified", r.Verified).
		Dur("elapsed", time.Since(start)).
		Msg("verification complete")
	return r
}

// loadReferences resolves reference transcripts through the store,
// transcribing cold ones concurrently. References whose transcription
// fails are skipped; only a fully unavailable corpus is an error.
func (e *Engine) loadReferences(ctx context.Context, refs []corpus.Reference, log zerolog.Logger) ([]*model.Transcript, map[string]string, error) {
	jobs := make([]worker.Job, len(refs))
	for i, ref := range refs {
		jobs[i] = loadJob{engine: e, ref: ref}
	}
	results := e.pool.Run(ctx, jobs)

	transcripts := make([]*model.Transcript, 0, len(refs))
	paths := make(map[string]string, len(refs))
	for i, res := range results {
		lr, ok := res.(loadResult)
		if !ok || lr.err != nil {
			log.Warn().Err(res.Err()).Str("reference", refs[i].Name).Msg("reference unavailable, skipping")
			continue
		}
		transcripts = append(transcripts, lr.transcript)
		paths[refs[i].SourceID] = refs[i].Path
	}
	if len(transcripts) == 0 {
		return nil, nil, fmt.Errorf("%w: no reference transcript could be obtained", model.ErrTranscriptUnavailable)
	}
	return transcripts, paths, nil
}

type loadJob struct {
	engine *Engine
	ref    corpus.Reference
}

type loadResult struct {
	transcript *model.Transcript
	err        error
}

func (r loadResult) Err() error { return r.err }

func (j loadJob) Execute(ctx context.Context) worker.Result {
	t, err := j.engine.buildTranscript(ctx, j.ref)
	return loadResult{transcript: t, err: err}
}

// buildTranscript resolves one reference through the cache, counting
// hits and misses.
func (e *Engine) buildTranscript(ctx context.Context, ref corpus.Reference) (*model.Transcript, error) {
	if e.store.Cached(ref.SourceID) {
		e.metrics.TranscriptCacheHits.Inc()
	} else {
		e.metrics.TranscriptCacheMiss.Inc()
	}
	return e.store.GetOrBuild(ctx, ref.SourceID, func(ctx context.Context) (*model.Transcript, error) {
		t, err := e.transcriber.Transcribe(ctx, ref.Path)
		if err != nil {
			return nil, err
		}
		e.metrics.TranscriptionsTotal.Inc()
		t.SourceID = ref.SourceID
		t.SourceName = ref.Name
		return t, nil
	})
}

func (e *Engine) recordSpeakerCheck(check model.SpeakerCheck) {
	switch {
	case check.Error != "":
		e.metrics.RecordSpeakerCheck("failed")
	case check.Verified:
		e.metrics.RecordSpeakerCheck("verified")
	default:
		e.metrics.RecordSpeakerCheck("rejected")
	}
}

// GetResult returns a previously computed verification result.
func (e *Engine) GetResult(verificationID string) (*model.VerificationResult, error) {
	if v, ok := e.results.Get(verificationID); ok {
		return v.(*model.VerificationResult), nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrResultNotFound, verificationID)
}

// ListReferences describes every reference recording and whether its
// transcript is already cached.
func (e *Engine) ListReferences(ctx context.Context) ([]model.ReferenceInfo, error) {
	refs, err := e.library.List()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	infos := make([]model.ReferenceInfo, 0, len(refs))
	for _, ref := range refs {
		info := model.ReferenceInfo{
			SourceID: ref.SourceID,
			Name:     ref.Name,
			Cached:   e.store.Cached(ref.SourceID),
		}
		if t, ok := e.store.Get(ref.SourceID); ok {
			info.Duration = t.Duration
			info.WordCount = t.WordCount()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Preprocess transcribes one reference ahead of verification traffic.
func (e *Engine) Preprocess(ctx context.Context, sourceID string) error {
	refs, err := e.library.List()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	for _, ref := range refs {
		if ref.SourceID == sourceID {
			_, err := e.buildTranscript(ctx, ref)
			return err
		}
	}
	return fmt.Errorf("%w: %s", model.ErrReferenceNotFound, sourceID)
}

// DeleteReference removes a reference recording from the corpus: the
// file itself and its cached transcript. Verification results that
// already cite the reference stay retrievable.
func (e *Engine) DeleteReference(sourceID string) error {
	refs, err := e.library.List()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	for _, ref := range refs {
		if ref.SourceID != sourceID {
			continue
		}
		if err := os.Remove(ref.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove reference file: %w", err)
		}
		e.log.Info().Str("source_id", sourceID).Str("name", ref.Name).Msg("reference deleted")
		return e.store.Evict(sourceID)
	}
	return fmt.Errorf("%w: %s", model.ErrReferenceNotFound, sourceID)
}

// PreprocessAll transcribes every reference that is not yet cached.
func (e *Engine) PreprocessAll(ctx context.Context) error {
	refs, err := e.library.List()
	if err != nil {
		return fmt.Errorf("list references: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}
	if _, _, err := e.loadReferences(ctx, refs, e.log); err != nil {
		return err
	}
	return nil
}

// Invalidate evicts a reference transcript from every cache layer.
func (e *Engine) Invalidate(sourceID string) error {
	return e.store.Evict(sourceID)
}

// ClearCache removes every cached transcript.
func (e *Engine) ClearCache() error {
	return e.store.ClearAll()
}
