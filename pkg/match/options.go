// Package match implements the lexical comparison of OCR-extracted text
// against campaign keyword tags. Everything here is a pure function of its
// inputs: the same text and tags always produce the same result, which is
// what makes cheap re-evaluation after a tag edit valid without another OCR
// pass.
package match

// Options holds the tunable scoring thresholds. The defaults were tuned
// against outdoor photography, where glare and angle make OCR noisy; treat
// them as configuration rather than fixed law.
type Options struct {
	// Similarity is the minimum normalized edit-distance similarity (0-100)
	// for a sliding-window keyword match.
	Similarity float64

	// VerifyScore is the minimum match score for a photo to be considered
	// verified, absent any exclude hit.
	VerifyScore int

	// LowScore is the score floor below which an unverified photo is flagged
	// as a low match.
	LowScore int

	// SampleLength caps the copy of the source text kept on a MatchResult.
	SampleLength int
}

// DefaultOptions returns the empirically tuned defaults.
func DefaultOptions() Options {
	return Options{
		Similarity:   65.0,
		VerifyScore:  40,
		LowScore:     15,
		SampleLength: 280,
	}
}
