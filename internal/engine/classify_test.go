package engine

import (
	"testing"

	"github.com/provenant/clipverify/internal/model"
)

func TestClassify(t *testing.T) {
	match := &model.MatchCandidate{SourceID: "ref", Similarity: 0.95}

	tests := []struct {
		name         string
		best         *model.MatchCandidate
		check        *model.SpeakerCheck
		wantType     model.VerificationType
		wantVerified bool
	}{
		{
			name:         "no match",
			best:         nil,
			check:        nil,
			wantType:     model.VerificationNone,
			wantVerified: false,
		},
		{
			name:         "content and speaker",
			best:         match,
			check:        &model.SpeakerCheck{Verified: true, Similarity: 0.92},
			wantType:     model.VerificationFull,
			wantVerified: true,
		},
		{
			name:         "speaker below threshold",
			best:         match,
			check:        &model.SpeakerCheck{Verified: false, Similarity: 0.60},
			wantType:     model.VerificationContentOnly,
			wantVerified: false,
		},
		{
			name:         "speaker check errored",
			best:         match,
			check:        &model.SpeakerCheck{Verified: false, Error: "embedding service down"},
			wantType:     model.VerificationContentOnly,
			wantVerified: false,
		},
		{
			name:         "content match without speaker check",
			best:         match,
			check:        nil,
			wantType:     model.VerificationContentOnly,
			wantVerified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotVerified := Classify(tt.best, tt.check)
			if gotType != tt.wantType {
				t.Errorf("type = %s, want %s", gotType, tt.wantType)
			}
			if gotVerified != tt.wantVerified {
				t.Errorf("verified = %t, want %t", gotVerified, tt.wantVerified)
			}
		})
	}
}
