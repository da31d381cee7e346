package corpus

import (
	"context"
	"sort"

	"github.com/provenant/clipverify/internal/match"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/worker"
)

// Searcher runs the sliding-window matcher against every reference
// transcript concurrently and ranks the candidates.
type Searcher struct {
	matcher *match.Matcher
	pool    *worker.Pool
}

// NewSearcher creates a corpus searcher backed by the given pool.
func NewSearcher(matcher *match.Matcher, pool *worker.Pool) *Searcher {
	return &Searcher{matcher: matcher, pool: pool}
}

type searchJob struct {
	matcher   *match.Matcher
	clipWords []string
	ref       *model.Transcript
	minScore  float64
}

type searchResult struct {
	candidate *model.MatchCandidate
	err       error
}

func (r searchResult) Err() error { return r.err }

func (j searchJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return searchResult{err: err}
	}
	return searchResult{candidate: j.matcher.FindBestSpan(j.clipWords, j.ref, j.minScore)}
}

// Search matches the clip against each reference transcript and returns
// every candidate at or above minScore, ordered by similarity descending
// with ties broken by earlier start time, then by reference order.
func (s *Searcher) Search(ctx context.Context, clip *model.Transcript, refs []*model.Transcript, minScore float64) []model.MatchCandidate {
	clipWords := clip.NormalizedWords()
	if len(clipWords) == 0 || len(refs) == 0 {
		return nil
	}

	jobs := make([]worker.Job, len(refs))
	for i, ref := range refs {
		jobs[i] = searchJob{matcher: s.matcher, clipWords: clipWords, ref: ref, minScore: minScore}
	}

	results := s.pool.Run(ctx, jobs)

	var candidates []model.MatchCandidate
	for _, res := range results {
		sr, ok := res.(searchResult)
		if !ok || sr.err != nil || sr.candidate == nil {
			continue
		}
		candidates = append(candidates, *sr.candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].StartTime < candidates[j].StartTime
	})
	return candidates
}
