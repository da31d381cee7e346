// Package media extracts audio from recordings by shelling out to
// ffmpeg. Container and codec handling stay inside ffmpeg; this package
// only derives the temp files the collaborators consume.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Extractor produces temporary audio files from media files.
type Extractor struct {
	binary  string
	tempDir string
}

// NewExtractor creates an extractor writing temp files into tempDir
// (the OS default when empty).
func NewExtractor(tempDir string) *Extractor {
	return &Extractor{binary: "ffmpeg", tempDir: tempDir}
}

// ExtractAudio extracts the full audio track as 16 kHz mono MP3, the
// input format the transcription collaborator expects. The caller owns
// the returned file and should Cleanup it.
func (e *Extractor) ExtractAudio(ctx context.Context, mediaPath string) (string, error) {
	out, err := e.tempFile("audio-*.mp3")
	if err != nil {
		return "", err
	}

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "16000",
		"-ac", "1",
		"-y", out,
	}
	if err := e.run(ctx, args); err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// ExtractSegment extracts a bounded WAV segment starting at start
// seconds, 16 kHz mono PCM, for the speaker-embedding collaborator.
func (e *Extractor) ExtractSegment(ctx context.Context, mediaPath string, start, duration float64) (string, error) {
	out, err := e.tempFile("segment-*.wav")
	if err != nil {
		return "", err
	}

	args := []string{
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", mediaPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y", out,
	}
	if err := e.run(ctx, args); err != nil {
		_ = os.Remove(out)
		return "", err
	}
	return out, nil
}

// Cleanup removes a temp file produced by this extractor.
func (e *Extractor) Cleanup(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

func (e *Extractor) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := stderr.String()
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, detail)
	}
	return nil
}

func (e *Extractor) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp(e.tempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}
	return path, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
