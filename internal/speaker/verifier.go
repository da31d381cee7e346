package speaker

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/media"
	"github.com/provenant/clipverify/internal/model"
)

// Verifier performs the speaker-identity check for one content match.
// It never returns an error: any collaborator failure yields a
// SpeakerCheck with Verified=false and the reason recorded, which the
// engine degrades to a content_only classification.
type Verifier struct {
	embedder  Embedder
	extractor *media.Extractor
	windowCap time.Duration
	log       zerolog.Logger
}

// NewVerifier creates a speaker verifier. windowCap bounds the audio
// span analyzed from each recording.
func NewVerifier(embedder Embedder, extractor *media.Extractor, windowCap time.Duration, logger zerolog.Logger) *Verifier {
	return &Verifier{
		embedder:  embedder,
		extractor: extractor,
		windowCap: windowCap,
		log:       logger.With().Str("component", "speaker_verifier").Logger(),
	}
}

// Verify compares the clip's leading audio span against the reference
// span starting at the matched position. Both spans last
// min(windowCap, match duration).
func (v *Verifier) Verify(ctx context.Context, clipPath, refPath string, m *model.MatchCandidate, threshold float64) model.SpeakerCheck {
	duration := math.Min(v.windowCap.Seconds(), m.Duration())
	if duration <= 0 {
		return v.failed(threshold, "matched span has zero duration")
	}

	clipAudio, err := v.extractor.ExtractSegment(ctx, clipPath, 0, duration)
	if err != nil {
		return v.failed(threshold, "extract clip span: "+err.Error())
	}
	defer v.extractor.Cleanup(clipAudio)

	refAudio, err := v.extractor.ExtractSegment(ctx, refPath, m.StartTime, duration)
	if err != nil {
		return v.failed(threshold, "extract reference span: "+err.Error())
	}
	defer v.extractor.Cleanup(refAudio)

	clipEmbedding, err := v.embedder.Embed(ctx, clipAudio)
	if err != nil {
		return v.failed(threshold, "embed clip span: "+err.Error())
	}
	refEmbedding, err := v.embedder.Embed(ctx, refAudio)
	if err != nil {
		return v.failed(threshold, "embed reference span: "+err.Error())
	}

	similarity, err := CosineSimilarity(clipEmbedding, refEmbedding)
	if err != nil {
		return v.failed(threshold, err.Error())
	}

	check := model.SpeakerCheck{
		Verified:   similarity >= threshold,
		Similarity: similarity,
		Threshold:  threshold,
	}
	v.log.Debug().
		Float64("similarity", similarity).
		Float64("threshold", threshold).
		Bool("verified", check.Verified).
		Msg("speaker check complete")
	return check
}

func (v *Verifier) failed(threshold float64, reason string) model.SpeakerCheck {
	v.log.Warn().Str("reason", reason).Msg("speaker check failed")
	return model.SpeakerCheck{
		Verified:   false,
		Similarity: 0,
		Threshold:  threshold,
		Error:      reason,
	}
}
