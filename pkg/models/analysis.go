package models

// TagSet carries the campaign's keyword configuration. Include keywords are
// terms the installed creative is expected to contain; exclude keywords mark a
// wrong or competing ad when found. ExpectedCopy optionally holds the full ad
// copy for word-error-rate diagnostics.
type TagSet struct {
	Include      []string `json:"include"`
	Exclude      []string `json:"exclude"`
	ExpectedCopy string   `json:"expected_copy,omitempty"`
}

// IsEmpty reports whether no include keywords are configured.
func (t TagSet) IsEmpty() bool {
	return len(t.Include) == 0
}

// MatchResult is the scored outcome of comparing extracted text against a
// TagSet. It is a pure derivation and is never persisted on its own.
type MatchResult struct {
	Score            int      `json:"score"`
	Matched          []string `json:"matched"`
	Unmatched        []string `json:"unmatched"`
	ExcludeHits      []string `json:"exclude_hits"`
	SuspiciousTokens []string `json:"suspicious_tokens"`
	WordCount        int      `json:"word_count"`
	TextSample       string   `json:"text_sample"`

	// CopyWER is the word error rate of the extracted text against
	// TagSet.ExpectedCopy; nil when no expected copy is configured.
	CopyWER *float64 `json:"copy_wer,omitempty"`
}

// Flag is a categorical verdict derived from a MatchResult.
type Flag string

const (
	FlagVerified         Flag = "VERIFIED"
	FlagExcludeMatch     Flag = "EXCLUDE_MATCH"
	FlagLowMatch         Flag = "LOW_MATCH"
	FlagWrongPoster      Flag = "WRONG_POSTER"
	FlagGraffitiDetected Flag = "GRAFFITI_DETECTED"
	FlagNoTextFound      Flag = "NO_TEXT_FOUND"
	FlagScanError        Flag = "SCAN_ERROR"
)

// FlagSet is an ordered set of flags; multiple flags may co-occur.
type FlagSet []Flag

// Has reports whether f is present in the set.
func (s FlagSet) Has(f Flag) bool {
	for _, v := range s {
		if v == f {
			return true
		}
	}
	return false
}

// HasIssue reports whether the set carries any negative verdict that counts
// toward a proof record's issue total.
func (s FlagSet) HasIssue() bool {
	return s.Has(FlagExcludeMatch) || s.Has(FlagLowMatch) ||
		s.Has(FlagWrongPoster) || s.Has(FlagGraffitiDetected)
}

// TextExtraction is the OCR collaborator's output for one photo.
type TextExtraction struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// PhotoAnalysis is the transient per-photo analysis state, keyed by photo
// identity. It is created when extraction starts, rewritten on re-evaluation
// and deleted once the photo is merged into a proof record.
type PhotoAnalysis struct {
	PhotoID    string  `json:"photo_id"`
	CampaignID string  `json:"campaign_id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`

	Match MatchResult `json:"match"`
	Flags FlagSet     `json:"flags"`

	Analyzing bool   `json:"analyzing"`
	Error     string `json:"error,omitempty"`
}

// Completed reports whether the photo has a finished, error-free extraction
// whose cached text can be re-scored without another OCR pass.
func (a *PhotoAnalysis) Completed() bool {
	return a != nil && !a.Analyzing && a.Error == "" && a.Text != ""
}
