package match

import (
	"strings"

	"github.com/provenant/clipverify/internal/model"
)

// Matcher locates the best-aligned contiguous span of a clip inside a
// reference transcript by testing every possible window position. The
// sliding window avoids the boundary artifacts of fixed-size chunking:
// a clip straddling any position still lines up with exactly one window.
type Matcher struct{}

// NewMatcher creates a new sliding-window matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// FindBestSpan slides a window of clip length across the reference words,
// scores each window text against the clip text, and returns the best
// match at or above minScore, or nil.
//
// Among windows achieving the same maximum score the earliest start index
// wins, so output is deterministic even for repetitive references. The
// O(m·n) scan is bounded by a character-multiset upper bound that skips
// windows which provably cannot exceed the current best.
func (m *Matcher) FindBestSpan(clipWords []string, ref *model.Transcript, minScore float64) *model.MatchCandidate {
	n := len(clipWords)
	if n == 0 {
		return nil
	}
	refWords := ref.Words
	if len(refWords) < n {
		return nil
	}

	tokens := make([]string, len(refWords))
	for i, w := range refWords {
		tokens[i] = NormalizeWord(w.Text)
	}
	clipText := strings.Join(clipWords, " ")

	// Start below zero so the earliest window is recorded even when every
	// window scores 0.0; whether a zero score survives is decided by the
	// minScore check below, not by the scan.
	bestScore := -1.0
	bestIdx := -1
	for i := 0; i+n <= len(tokens); i++ {
		window := strings.Join(tokens[i:i+n], " ")
		if bestIdx >= 0 && RatioUpperBound(clipText, window) <= bestScore {
			continue
		}
		if score := Ratio(clipText, window); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < minScore {
		return nil
	}

	endIdx := bestIdx + n - 1
	return &model.MatchCandidate{
		SourceID:         ref.SourceID,
		SourceName:       ref.SourceName,
		StartTime:        refWords[bestIdx].Start,
		EndTime:          refWords[endIdx].End,
		Similarity:       bestScore,
		MatchedText:      strings.Join(tokens[bestIdx:endIdx+1], " "),
		WindowStartIndex: bestIdx,
		WindowEndIndex:   endIdx,
	}
}
