// Package speaker runs the speaker-identity check for a content match:
// it derives bounded audio spans from the clip and the matched reference
// position, obtains voice embeddings from the external embedding
// collaborator, and compares them.
package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/worker"
)

// limiterKey names this collaborator in the shared rate limiter.
const limiterKey = "embedding"

const maxEmbeddingBody = 1 << 20

// Embedder extracts a fixed-length voice embedding from an audio file.
type Embedder interface {
	Embed(ctx context.Context, audioPath string) ([]float64, error)
}

// HTTPEmbedder calls the external speaker-embedding service over HTTP:
// the audio file is posted as multipart form data and the service
// responds with a JSON embedding vector.
type HTTPEmbedder struct {
	client  *http.Client
	baseURL string
	limiter *worker.Limiter
}

// NewHTTPEmbedder creates a client for the embedding service.
func NewHTTPEmbedder(cfg model.EmbeddingConfig, limiter *worker.Limiter) *HTTPEmbedder {
	limiter.SetRate(limiterKey, cfg.RequestsPerSecond, cfg.Burst)
	return &HTTPEmbedder{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		limiter: limiter,
	}
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed posts the audio file to the embedding service.
func (e *HTTPEmbedder) Embed(ctx context.Context, audioPath string) ([]float64, error) {
	if err := e.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, err
	}

	body, contentType, err := buildMultipart(audioPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding service: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEmbeddingBody))
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned empty vector")
	}
	return parsed.Embedding, nil
}

func buildMultipart(audioPath string) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
