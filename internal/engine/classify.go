package engine

import "github.com/provenant/clipverify/internal/model"

// Classify maps a content match and a speaker check onto the three-state
// outcome. The speaker check can only upgrade a content match to full
// verification; its absence or failure never erases the content match.
func Classify(best *model.MatchCandidate, check *model.SpeakerCheck) (model.VerificationType, bool) {
	if best == nil {
		return model.VerificationNone, false
	}
	if check != nil && check.Verified {
		return model.VerificationFull, true
	}
	return model.VerificationContentOnly, false
}
