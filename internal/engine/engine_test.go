package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/corpus"
	"github.com/provenant/clipverify/internal/match"
	"github.com/provenant/clipverify/internal/metrics"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/store"
	"github.com/provenant/clipverify/internal/worker"
)

// fakeTranscriber serves canned transcripts by media path.
type fakeTranscriber struct {
	transcripts map[string]*model.Transcript
	calls       int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) (*model.Transcript, error) {
	f.calls++
	t, ok := f.transcripts[mediaPath]
	if !ok {
		return nil, errors.New("no transcript for " + mediaPath)
	}
	// Return a copy so the engine's SourceID stamping does not mutate
	// the fixture.
	cp := *t
	return &cp, nil
}

// fakeLibrary implements ReferenceLister
type fakeLibrary struct {
	refs []corpus.Reference
	err  error
}

func (f *fakeLibrary) List() ([]corpus.Reference, error) {
	return f.refs, f.err
}

// fakeSpeaker implements SpeakerVerifier
type fakeSpeaker struct {
	check    model.SpeakerCheck
	clipPath string
	refPath  string
	calls    int
}

func (f *fakeSpeaker) Verify(ctx context.Context, clipPath, refPath string, m *model.MatchCandidate, threshold float64) model.SpeakerCheck {
	f.calls++
	f.clipPath = clipPath
	f.refPath = refPath
	check := f.check
	check.Threshold = threshold
	return check
}

func wordsTranscript(words ...string) *model.Transcript {
	t := &model.Transcript{}
	text := ""
	for i, w := range words {
		if i > 0 {
			text += " "
		}
		text += w
		t.Words = append(t.Words, model.Word{Text: w, Start: float64(i), End: float64(i + 1)})
	}
	t.FullText = text
	t.NormalizedText = text
	t.Duration = float64(len(words))
	return t
}

type fixture struct {
	engine      *Engine
	transcriber *fakeTranscriber
	library     *fakeLibrary
	speaker     *fakeSpeaker
	clipPath    string
}

// newFixture builds an engine over fakes: one clip file on disk, one
// reference whose transcript contains the clip phrase, one that does not.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	clipPath := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(clipPath, []byte("clip bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	matchPath := filepath.Join(dir, "speech.mp4")
	otherPath := filepath.Join(dir, "interview.mp4")

	transcriber := &fakeTranscriber{transcripts: map[string]*model.Transcript{
		clipPath:  wordsTranscript("quick", "brown", "fox"),
		matchPath: wordsTranscript("the", "quick", "brown", "fox", "jumps", "over"),
		otherPath: wordsTranscript("completely", "unrelated", "interview", "footage", "here", "now"),
	}}
	library := &fakeLibrary{refs: []corpus.Reference{
		{SourceID: "speech-id", Name: "speech.mp4", Path: matchPath},
		{SourceID: "interview-id", Name: "interview.mp4", Path: otherPath},
	}}
	speaker := &fakeSpeaker{check: model.SpeakerCheck{Verified: true, Similarity: 0.92}}

	cfg := model.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(dir, "cache")

	eng := New(cfg, Deps{
		Store:       store.New(cfg.Cache.Dir, zerolog.Nop()),
		Transcriber: transcriber,
		Library:     library,
		Searcher:    corpus.NewSearcher(match.NewMatcher(), worker.NewPool(2)),
		Speaker:     speaker,
		Pool:        worker.NewPool(2),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		Logger:      zerolog.Nop(),
	})
	return &fixture{
		engine:      eng,
		transcriber: transcriber,
		library:     library,
		speaker:     speaker,
		clipPath:    clipPath,
	}
}

func TestVerifyClipFullVerification(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Type != model.VerificationFull || !result.Verified {
		t.Errorf("outcome = %s/%t, want full/true", result.Type, result.Verified)
	}
	if result.BestMatch == nil {
		t.Fatal("missing best match")
	}
	if result.BestMatch.SourceID != "speech-id" {
		t.Errorf("best match source = %s, want speech-id", result.BestMatch.SourceID)
	}
	if result.BestMatch.StartTime != 1.0 || result.BestMatch.EndTime != 4.0 {
		t.Errorf("matched span = [%v, %v], want [1, 4]", result.BestMatch.StartTime, result.BestMatch.EndTime)
	}
	if result.LedgerLookupID != "speech-id" {
		t.Errorf("ledger lookup id = %s, want speech-id", result.LedgerLookupID)
	}
	if fx.speaker.calls != 1 {
		t.Errorf("speaker check called %d times, want 1", fx.speaker.calls)
	}
	if fx.speaker.refPath == "" || filepath.Base(fx.speaker.refPath) != "speech.mp4" {
		t.Errorf("speaker check got reference path %q", fx.speaker.refPath)
	}
}

func TestVerifyClipSpeakerMismatchIsContentOnly(t *testing.T) {
	fx := newFixture(t)
	fx.speaker.check = model.SpeakerCheck{Verified: false, Similarity: 0.60}

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != model.VerificationContentOnly || result.Verified {
		t.Errorf("outcome = %s/%t, want content_only/false", result.Type, result.Verified)
	}
	if result.BestMatch == nil || result.SpeakerCheck == nil {
		t.Fatal("content evidence must be preserved on speaker mismatch")
	}
	if result.SpeakerCheck.Similarity != 0.60 {
		t.Errorf("speaker similarity = %v, want 0.60", result.SpeakerCheck.Similarity)
	}
}

func TestVerifyClipSpeakerFailureIsContentOnly(t *testing.T) {
	fx := newFixture(t)
	fx.speaker.check = model.SpeakerCheck{Verified: false, Error: "embedding service down"}

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != model.VerificationContentOnly {
		t.Errorf("outcome = %s, want content_only", result.Type)
	}
	if result.SpeakerCheck.Error == "" {
		t.Error("speaker failure reason must be recorded")
	}
}

func TestVerifyClipNoContentMatch(t *testing.T) {
	fx := newFixture(t)
	fx.transcriber.transcripts[fx.clipPath] = wordsTranscript("phrase", "absent", "from", "corpus", "entirely")

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != model.VerificationNone || result.Verified {
		t.Errorf("outcome = %s/%t, want not_verified/false", result.Type, result.Verified)
	}
	if result.Reason == "" {
		t.Error("not_verified result must carry a reason")
	}
	if fx.speaker.calls != 0 {
		t.Error("speaker check must not run without a content match")
	}
}

func TestVerifyClipEmptyCorpus(t *testing.T) {
	fx := newFixture(t)
	fx.library.refs = nil

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != model.VerificationNone {
		t.Errorf("outcome = %s, want not_verified", result.Type)
	}
	if result.Reason != model.ErrNoReferences.Error() {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestVerifyClipInvalidInput(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.engine.VerifyClip(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), "missing.mp4"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("missing file: error = %v, want ErrInvalidInput", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fx.engine.VerifyClip(context.Background(), empty, "empty.mp4"); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("empty file: error = %v, want ErrInvalidInput", err)
	}
	if fx.transcriber.calls != 0 {
		t.Error("invalid input must be rejected before transcription")
	}
}

func TestVerifyClipSkipsUnavailableReference(t *testing.T) {
	fx := newFixture(t)
	// Remove the non-matching reference's transcript; its failure must
	// not abort the request.
	delete(fx.transcriber.transcripts, fx.library.refs[1].Path)

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Type != model.VerificationFull {
		t.Errorf("outcome = %s, want full", result.Type)
	}
}

func TestVerifyClipAllReferencesUnavailable(t *testing.T) {
	fx := newFixture(t)
	fx.transcriber.transcripts = map[string]*model.Transcript{
		fx.clipPath: wordsTranscript("quick", "brown", "fox"),
	}

	if _, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4"); !errors.Is(err, model.ErrTranscriptUnavailable) {
		t.Errorf("error = %v, want ErrTranscriptUnavailable", err)
	}
}

func TestVerifyClipReusesCachedReferenceTranscripts(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4"); err != nil {
		t.Fatal(err)
	}
	first := fx.transcriber.calls // clip + both references

	if _, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4"); err != nil {
		t.Fatal(err)
	}
	if got := fx.transcriber.calls - first; got != 1 {
		t.Errorf("second request transcribed %d files, want 1 (clip only)", got)
	}
}

func TestVerifyClipDeterministic(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
		if err != nil {
			t.Fatal(err)
		}
		if again.Type != first.Type || again.BestMatch.SourceID != first.BestMatch.SourceID ||
			again.BestMatch.Similarity != first.BestMatch.Similarity {
			t.Fatalf("run %d: outcome changed: %+v vs %+v", i, again.BestMatch, first.BestMatch)
		}
	}
}

func TestGetResult(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.engine.VerifyClip(context.Background(), fx.clipPath, "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}

	got, err := fx.engine.GetResult(result.VerificationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VerificationID != result.VerificationID {
		t.Error("retrieved a different result")
	}

	if _, err := fx.engine.GetResult("nope"); !errors.Is(err, model.ErrResultNotFound) {
		t.Errorf("unknown id: error = %v, want ErrResultNotFound", err)
	}
}

func TestListReferences(t *testing.T) {
	fx := newFixture(t)

	infos, err := fx.engine.ListReferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 references, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Cached {
			t.Errorf("%s reported cached before any preprocessing", info.Name)
		}
	}

	if err := fx.engine.PreprocessAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	infos, err = fx.engine.ListReferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range infos {
		if !info.Cached {
			t.Errorf("%s not cached after preprocessing", info.Name)
		}
		if info.WordCount == 0 {
			t.Errorf("%s missing word count", info.Name)
		}
	}
}

func TestPreprocessUnknownReference(t *testing.T) {
	fx := newFixture(t)
	if err := fx.engine.Preprocess(context.Background(), "unknown"); !errors.Is(err, model.ErrReferenceNotFound) {
		t.Errorf("error = %v, want ErrReferenceNotFound", err)
	}
}

func TestDeleteReference(t *testing.T) {
	fx := newFixture(t)

	target := fx.library.refs[0]
	if err := os.WriteFile(target.Path, []byte("reference bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fx.engine.Preprocess(context.Background(), target.SourceID); err != nil {
		t.Fatal(err)
	}

	if err := fx.engine.DeleteReference(target.SourceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(target.Path); !errors.Is(err, os.ErrNotExist) {
		t.Error("reference file still on disk after delete")
	}

	infos, err := fx.engine.ListReferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range infos {
		if info.SourceID == target.SourceID && info.Cached {
			t.Error("transcript still cached after delete")
		}
	}

	if err := fx.engine.DeleteReference("unknown"); !errors.Is(err, model.ErrReferenceNotFound) {
		t.Errorf("unknown id: error = %v, want ErrReferenceNotFound", err)
	}
}

func TestInvalidate(t *testing.T) {
	fx := newFixture(t)

	if err := fx.engine.Preprocess(context.Background(), "speech-id"); err != nil {
		t.Fatal(err)
	}
	if err := fx.engine.Invalidate("speech-id"); err != nil {
		t.Fatal(err)
	}

	infos, err := fx.engine.ListReferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range infos {
		if info.SourceID == "speech-id" && info.Cached {
			t.Error("transcript still cached after invalidation")
		}
	}
}
