package model

import "errors"

// Error taxonomy for the verification engine.
//
// Matching-path failures (normalizer, matcher, corpus search) are treated
// as programming defects and are not represented here. Collaborator
// failures are expected and map onto these sentinels; speaker-check
// failures are recovered locally (SpeakerCheck.Error) and never surface
// as errors.
var (
	// ErrTranscriptUnavailable means the transcription collaborator
	// failed or timed out. Fatal for the request.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrNoReferences means the reference corpus is empty. Callers
	// surface this as a not_verified outcome, not a crash.
	ErrNoReferences = errors.New("no reference recordings loaded")

	// ErrInvalidInput means the submitted clip is empty or unreadable.
	// Rejected before any collaborator call is made.
	ErrInvalidInput = errors.New("invalid input clip")

	// ErrResultNotFound means no cached result exists for the requested
	// verification ID.
	ErrResultNotFound = errors.New("verification result not found")

	// ErrReferenceNotFound means no reference recording carries the
	// requested source ID.
	ErrReferenceNotFound = errors.New("reference recording not found")
)
