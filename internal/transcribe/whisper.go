package transcribe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/provenant/clipverify/internal/match"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/worker"
)

// limiterKey names this collaborator in the shared rate limiter.
const limiterKey = "transcription"

// WhisperTranscriber transcribes media via the OpenAI Whisper API with
// word-level timestamps (verbose_json, word granularity).
type WhisperTranscriber struct {
	client    *openai.Client
	cfg       model.WhisperConfig
	extractor AudioExtractor
	limiter   *worker.Limiter
	log       zerolog.Logger
}

// NewWhisper creates a Whisper-backed transcriber.
func NewWhisper(cfg model.WhisperConfig, extractor AudioExtractor, limiter *worker.Limiter, logger zerolog.Logger) (*WhisperTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	limiter.SetRate(limiterKey, cfg.RequestsPerSecond, cfg.Burst)

	return &WhisperTranscriber{
		client:    openai.NewClientWithConfig(clientConfig),
		cfg:       cfg,
		extractor: extractor,
		limiter:   limiter,
		log:       logger.With().Str("component", "whisper").Logger(),
	}, nil
}

// Transcribe extracts the audio track and requests a word-timestamped
// transcription. Any failure wraps model.ErrTranscriptUnavailable.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, mediaPath string) (*model.Transcript, error) {
	audioPath, err := t.extractor.ExtractAudio(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("%w: extract audio: %v", model.ErrTranscriptUnavailable, err)
	}
	defer t.extractor.Cleanup(audioPath)

	if err := t.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTranscriptUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	resp, err := t.client.CreateTranscription(callCtx, openai.AudioRequest{
		Model:    t.cfg.Model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: whisper api: %v", model.ErrTranscriptUnavailable, err)
	}

	normalized, _ := match.Normalize(resp.Text)
	words := make([]model.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, model.Word{Text: w.Word, Start: w.Start, End: w.End})
	}

	t.log.Debug().
		Str("media", mediaPath).
		Int("words", len(words)).
		Float64("duration", resp.Duration).
		Msg("transcription complete")

	return &model.Transcript{
		SourcePath:     mediaPath,
		FullText:       resp.Text,
		NormalizedText: normalized,
		Words:          words,
		Duration:       resp.Duration,
		Language:       resp.Language,
	}, nil
}
