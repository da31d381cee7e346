package model

import "strings"

// Word is a single transcribed word with its time span in seconds.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the word-level transcription of one recording.
//
// For a reference recording, SourceID is derived from the file content
// (SHA-256), so re-processing an unchanged file is a cache hit and a
// changed file gets a fresh identity. For a clip, SourceID is an
// ephemeral, request-scoped ID.
type Transcript struct {
	SourceID       string  `json:"source_id"`
	SourceName     string  `json:"source_name,omitempty"`
	SourcePath     string  `json:"source_path,omitempty"`
	FullText       string  `json:"full_text"`
	NormalizedText string  `json:"normalized_text"`
	Words          []Word  `json:"words"`
	Duration       float64 `json:"duration"`
	Language       string  `json:"language,omitempty"`
}

// WordCount returns the number of transcribed words.
func (t *Transcript) WordCount() int {
	return len(t.Words)
}

// NormalizedWords splits the normalized text into its word sequence.
func (t *Transcript) NormalizedWords() []string {
	return strings.Fields(t.NormalizedText)
}

// ReferenceInfo summarizes one reference recording for listings.
type ReferenceInfo struct {
	SourceID  string  `json:"source_id"`
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`
	WordCount int     `json:"word_count"`
	Cached    bool    `json:"cached"`
}
