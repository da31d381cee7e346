// Package transcribe adapts the external transcription collaborator.
// The engine only depends on the Transcriber interface; the Whisper
// implementation is the production provider.
package transcribe

import (
	"context"

	"github.com/provenant/clipverify/internal/model"
)

// Transcriber produces word-level transcripts for media files. Errors
// always wrap model.ErrTranscriptUnavailable so callers can classify
// collaborator failure without knowing the provider.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (*model.Transcript, error)
}

// AudioExtractor prepares the transcription input: a normalized audio
// track extracted from the source media.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, mediaPath string) (string, error)
	Cleanup(path string)
}
