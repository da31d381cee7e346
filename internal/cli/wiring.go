package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/provenant/clipverify/internal/corpus"
	"github.com/provenant/clipverify/internal/engine"
	"github.com/provenant/clipverify/internal/logging"
	"github.com/provenant/clipverify/internal/match"
	"github.com/provenant/clipverify/internal/media"
	"github.com/provenant/clipverify/internal/metrics"
	"github.com/provenant/clipverify/internal/model"
	"github.com/provenant/clipverify/internal/speaker"
	"github.com/provenant/clipverify/internal/store"
	"github.com/provenant/clipverify/internal/transcribe"
	"github.com/provenant/clipverify/internal/worker"
)

// buildEngine wires the full collaborator graph from configuration.
func buildEngine(cfg *model.Config, logger zerolog.Logger) (*engine.Engine, *prometheus.Registry, error) {
	registry := prometheus.NewRegistry()

	extractor := media.NewExtractor("")
	limiter := worker.NewLimiter(1, 1)

	transcriber, err := transcribe.NewWhisper(cfg.Whisper, extractor, limiter, logger)
	if err != nil {
		return nil, nil, err
	}

	embedder := speaker.NewHTTPEmbedder(cfg.Embedding, limiter)
	verifier := speaker.NewVerifier(embedder, extractor, cfg.Thresholds.SpeakerWindowCap, logger)

	eng := engine.New(cfg, engine.Deps{
		Store:       store.New(cfg.Cache.Dir, logger),
		Transcriber: transcriber,
		Library:     corpus.NewLibrary(cfg.Reference),
		Searcher:    corpus.NewSearcher(match.NewMatcher(), worker.NewPool(cfg.Concurrency.SearchWorkers)),
		Speaker:     verifier,
		Pool:        worker.NewPool(cfg.Concurrency.PreprocessWorkers),
		Metrics:     metrics.New(registry),
		Logger:      logger,
	})
	return eng, registry, nil
}

func newLogger(cfg *model.Config) zerolog.Logger {
	return logging.New(cfg.Log)
}

// newCLILogger forces human-readable output for one-shot commands; the
// server keeps the configured format.
func newCLILogger(cfg *model.Config) zerolog.Logger {
	logCfg := cfg.Log
	logCfg.Format = "console"
	return logging.New(logCfg)
}
