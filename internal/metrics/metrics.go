// Package metrics exposes Prometheus instrumentation for the
// verification engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clipverify"

// Metrics holds every collector the engine records into. Collectors are
// registered on the given registerer so tests can use isolated
// registries.
type Metrics struct {
	VerificationsTotal   *prometheus.CounterVec
	VerificationDuration prometheus.Histogram
	TranscriptionsTotal  prometheus.Counter
	TranscriptCacheHits  prometheus.Counter
	TranscriptCacheMiss  prometheus.Counter
	SpeakerChecksTotal   *prometheus.CounterVec
}

// New registers all collectors on reg and returns the set.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification requests completed, by outcome type.",
		}, []string{"type"}),
		VerificationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_duration_seconds",
			Help:      "End-to-end verification latency.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		TranscriptionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription calls issued to the speech-to-text backend.",
		}),
		TranscriptCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_cache_hits_total",
			Help:      "Reference transcript lookups served from cache.",
		}),
		TranscriptCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_cache_misses_total",
			Help:      "Reference transcript lookups that required transcription.",
		}),
		SpeakerChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speaker_checks_total",
			Help:      "Speaker-identity checks performed, by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordVerification records one completed verification.
func (m *Metrics) RecordVerification(verificationType string, elapsed time.Duration) {
	m.VerificationsTotal.WithLabelValues(verificationType).Inc()
	m.VerificationDuration.Observe(elapsed.Seconds())
}

// RecordSpeakerCheck records one speaker check outcome: "verified",
// "rejected", or "failed".
func (m *Metrics) RecordSpeakerCheck(outcome string) {
	m.SpeakerChecksTotal.WithLabelValues(outcome).Inc()
}
