package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/provenant/clipverify/internal/model"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "clipverify",
		"endpoints": []string{
			"POST /verify", "GET /verify/{id}", "GET /videos",
			"POST /videos/add", "POST /videos/preprocess",
			"DELETE /videos/{sourceID}", "GET /health", "GET /metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	refs, err := s.engine.ListReferences(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"references":        len(refs),
		"content_threshold": s.cfg.Thresholds.Content,
		"speaker_threshold": s.cfg.Thresholds.Speaker,
	})
}

// handleVerify accepts a multipart upload under the "file" field, runs
// the full verification flow, and returns the classified result.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: missing or oversized upload: %v", model.ErrInvalidInput, err))
		return
	}
	defer func() { _ = file.Close() }()

	clipPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer func() { _ = os.Remove(clipPath) }()

	result, err := s.engine.VerifyClip(r.Context(), clipPath, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.GetResult(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	refs, err := s.engine.ListReferences(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"videos": refs})
}

// handleAddVideo stores an uploaded recording in the reference
// directory and transcribes it right away, so the first verification
// against it does not pay the transcription cost.
func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: missing or oversized upload: %v", model.ErrInvalidInput, err))
		return
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		s.writeError(w, fmt.Errorf("%w: invalid file name", model.ErrInvalidInput))
		return
	}
	dst := filepath.Join(s.cfg.Reference.Dir, name)
	if err := writeFile(dst, file); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info().Str("name", name).Msg("reference added")

	sourceID, cached := s.eagerTranscribe(r.Context(), name)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"name":      name,
		"source_id": sourceID,
		"cached":    cached,
	})
}

// eagerTranscribe resolves the freshly stored recording's source ID and
// fills the transcript cache. A transcription failure leaves the
// reference in place uncached; it will be retried on the next use.
func (s *Server) eagerTranscribe(ctx context.Context, name string) (string, bool) {
	infos, err := s.engine.ListReferences(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("listing references after upload failed")
		return "", false
	}
	for _, info := range infos {
		if info.Name != name {
			continue
		}
		if err := s.engine.Preprocess(ctx, info.SourceID); err != nil {
			s.log.Warn().Err(err).Str("name", name).Msg("eager transcription failed")
			return info.SourceID, false
		}
		return info.SourceID, true
	}
	s.log.Warn().Str("name", name).Msg("uploaded reference not visible in corpus listing")
	return "", false
}

func (s *Server) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.PreprocessAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	refs, err := s.engine.ListReferences(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"videos": refs})
}

// handleDeleteVideo removes the recording from the reference directory
// and evicts its cached transcript, so the next corpus listing and
// verification no longer see it.
func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteReference(chi.URLParam(r, "sourceID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveUpload spools the uploaded clip to the upload directory so the
// media extractor can read it by path.
func (s *Server) saveUpload(file multipart.File, name string) (string, error) {
	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.cfg.Server.UploadDir, "clip-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	return tmp.Name(), nil
}

func writeFile(dst string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create reference dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create reference file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("write reference file: %w", err)
	}
	return out.Close()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrResultNotFound), errors.Is(err, model.ErrReferenceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrTranscriptUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, model.ErrNoReferences):
		status = http.StatusConflict
	}
	if status >= 500 {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
