package match

import "github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"

// wrongPosterMinLength is the amount of text that must be present before a
// total miss is read as a different creative rather than unreadable noise.
const wrongPosterMinLength = 20

// DeriveFlags turns a match result and the raw text length into categorical
// verdicts. Flags may co-occur; an exclude hit always suppresses VERIFIED no
// matter how high the score.
func DeriveFlags(m models.MatchResult, textLength int, opts Options) models.FlagSet {
	flags := models.FlagSet{}

	verified := m.Score >= opts.VerifyScore && len(m.ExcludeHits) == 0

	if len(m.ExcludeHits) > 0 {
		flags = append(flags, models.FlagExcludeMatch)
	}
	if m.Score < opts.LowScore && !verified && textLength >= minTextLength {
		// Below the readable-text floor NO_TEXT_FOUND stands alone; a low
		// score there is a symptom, not a separate verdict.
		flags = append(flags, models.FlagLowMatch)
	}
	if m.Score == 0 && textLength > wrongPosterMinLength {
		flags = append(flags, models.FlagWrongPoster)
	}
	if len(m.SuspiciousTokens) > 0 {
		flags = append(flags, models.FlagGraffitiDetected)
	}
	if textLength < minTextLength {
		flags = append(flags, models.FlagNoTextFound)
	}
	if verified {
		flags = append(flags, models.FlagVerified)
	}

	return flags
}
