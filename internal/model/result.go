package model

import "time"

// MatchCandidate is the best alignment of a clip inside one reference
// recording, produced by the sliding-window matcher. It is request-scoped
// and never persisted.
type MatchCandidate struct {
	SourceID         string  `json:"source_id"`
	SourceName       string  `json:"source_name,omitempty"`
	StartTime        float64 `json:"start_time"`
	EndTime          float64 `json:"end_time"`
	Similarity       float64 `json:"similarity"`
	MatchedText      string  `json:"matched_text"`
	WindowStartIndex int     `json:"start_word_index"`
	WindowEndIndex   int     `json:"end_word_index"`
}

// Duration returns the length of the matched span in seconds.
func (m *MatchCandidate) Duration() float64 {
	return m.EndTime - m.StartTime
}

// SpeakerCheck is the outcome of comparing the clip's voice against the
// matched reference span. Computed only when a MatchCandidate exists.
// A failed collaborator call is recorded in Error with Verified=false;
// it never aborts the verification.
type SpeakerCheck struct {
	Verified   bool    `json:"verified"`
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Error      string  `json:"error,omitempty"`
}

// VerificationType classifies the outcome of a verification request.
type VerificationType string

const (
	// VerificationFull means both the content and the speaker matched.
	VerificationFull VerificationType = "full"

	// VerificationContentOnly means the content matched but the speaker
	// check failed or errored — possible impersonation or voiceover.
	VerificationContentOnly VerificationType = "content_only"

	// VerificationNone means no reference matched above the content
	// threshold.
	VerificationNone VerificationType = "not_verified"
)

// VerificationResult is the classified outcome of one verify request.
// Created once, cached by VerificationID, never mutated afterwards.
type VerificationResult struct {
	VerificationID string           `json:"verification_id"`
	Verified       bool             `json:"verified"`
	Type           VerificationType `json:"verification_type"`
	Reason         string           `json:"reason,omitempty"`

	Matches      []MatchCandidate `json:"matches"`
	BestMatch    *MatchCandidate  `json:"best_match,omitempty"`
	SpeakerCheck *SpeakerCheck    `json:"speaker_check,omitempty"`

	ClipTranscript *Transcript `json:"clip_transcript,omitempty"`

	// LedgerLookupID echoes BestMatch.SourceID for the downstream
	// ledger/status collaborator.
	LedgerLookupID string `json:"ledger_lookup_id,omitempty"`

	ContentThreshold float64   `json:"content_threshold"`
	SpeakerThreshold float64   `json:"speaker_threshold"`
	Timestamp        time.Time `json:"timestamp"`
}
