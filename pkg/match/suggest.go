package match

import (
	"sort"
	"strings"
	"unicode"
)

// MaxSuggestions caps the ranked keyword candidates returned to the operator.
const MaxSuggestions = 8

// minSuggestLength excludes short particles; tokens of three characters or
// fewer are never suggested.
const minSuggestLength = 4

// minPhotoRecurrence is the number of distinct photos a token must appear in.
// Repeated ad copy shows up across photos of the same creative; incidental
// OCR noise does not.
const minPhotoRecurrence = 2

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "your": {}, "have": {},
	"more": {}, "will": {}, "been": {}, "were": {}, "they": {}, "them": {},
	"then": {}, "than": {}, "when": {}, "what": {}, "where": {}, "here": {},
	"there": {}, "their": {}, "about": {}, "into": {}, "over": {}, "only": {},
	"also": {}, "just": {}, "like": {}, "some": {}, "such": {}, "very": {},
	"each": {}, "which": {}, "would": {}, "could": {}, "should": {},
	"these": {}, "those": {}, "after": {}, "before": {}, "while": {},
}

// Suggest derives ranked candidate keywords from a campaign's extracted
// texts. Results only seed the operator's tag set; they are never applied
// automatically.
func Suggest(texts []string) []string {
	freq := make(map[string]int)
	photos := make(map[string]int)

	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(strings.ToLower(text)) {
			if !suggestible(tok) {
				continue
			}
			freq[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				photos[tok]++
			}
		}
	}

	candidates := make([]string, 0, len(freq))
	for tok, n := range photos {
		if n >= minPhotoRecurrence {
			candidates = append(candidates, tok)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if freq[candidates[i]] != freq[candidates[j]] {
			return freq[candidates[i]] > freq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates
}

func suggestible(tok string) bool {
	if len(tok) < minSuggestLength {
		return false
	}
	if _, ok := stopWords[tok]; ok {
		return false
	}
	numeric := true
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	return !numeric
}
