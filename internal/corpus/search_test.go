package corpus

import (
	"context"
	"testing"

	"github.com/provenant/clipverify/internal/match"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/worker"
)

func transcript(id string, words ...string) *model.Transcript {
	t := &model.Transcript{SourceID: id, SourceName: id}
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

func newTestSearcher() *Searcher {
	return NewSearcher(match.NewMatcher(), worker.NewPool(4))
}

func TestSearchRanksBySimilarity(t *testing.T) {
	clip := transcript("clip", "quick", "brown", "fox")
	refs := []*model.Transcript{
		transcript("partial", "the", "quick", "brown", "cat", "sat"),
		transcript("exact", "the", "quick", "brown", "fox", "jumps"),
	}

	got := newTestSearcher().Search(context.Background(), clip, refs, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].SourceID != "exact" {
		t.Errorf("best candidate = %s, want exact", got[0].SourceID)
	}
	if got[0].Similarity != 1.0 {
		t.Errorf("best similarity = %v, want 1.0", got[0].Similarity)
	}
	if got[1].Similarity >= got[0].Similarity {
		t.Errorf("candidates not ordered: %v then %v", got[0].Similarity, got[1].Similarity)
	}
}

func TestSearchTieBreaksOnStartTime(t *testing.T) {
	clip := transcript("clip", "alpha", "beta")
	// Both references contain the phrase perfectly, at different offsets.
	late := transcript("late", "x", "y", "z", "alpha", "beta")
	early := transcript("early", "alpha", "beta", "x", "y", "z")

	got := newTestSearcher().Search(context.Background(), clip, []*model.Transcript{late, early}, 0.9)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].SourceID != "early" {
		t.Errorf("tie must prefer earlier start time, got %s first", got[0].SourceID)
	}
}

func TestSearchFiltersBelowMinScore(t *testing.T) {
	clip := transcript("clip", "quick", "brown", "fox")
	refs := []*model.Transcript{
		transcript("noise", "completely", "unrelated", "speech", "here"),
		transcript("exact", "the", "quick", "brown", "fox", "jumps"),
	}

	got := newTestSearcher().Search(context.Background(), clip, refs, 0.8)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].SourceID != "exact" {
		t.Errorf("candidate = %s, want exact", got[0].SourceID)
	}
}

func TestSearchDeterministic(t *testing.T) {
	clip := transcript("clip", "one", "two", "three")
	refs := []*model.Transcript{
		transcript("a", "one", "two", "three", "four"),
		transcript("b", "zero", "one", "two", "three"),
		transcript("c", "one", "two", "three"),
	}

	s := newTestSearcher()
	first := s.Search(context.Background(), clip, refs, 0.5)
	for i := 0; i < 10; i++ {
		again := s.Search(context.Background(), clip, refs, 0.5)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d candidates, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].SourceID != first[j].SourceID {
				t.Fatalf("run %d: order changed at %d: %s vs %s", i, j, again[j].SourceID, first[j].SourceID)
			}
		}
	}
}

func TestSearchEmptyInputs(t *testing.T) {
	s := newTestSearcher()
	ref := transcript("ref", "some", "words")

	if got := s.Search(context.Background(), &model.Transcript{}, []*model.Transcript{ref}, 0.5); got != nil {
		t.Errorf("empty clip: got %d candidates, want none", len(got))
	}
	clip := transcript("clip", "some", "words")
	if got := s.Search(context.Background(), clip, nil, 0.5); got != nil {
		t.Errorf("empty corpus: got %d candidates, want none", len(got))
	}
}
