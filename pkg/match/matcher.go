package match

import (
	"math"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// minTextLength is the shortest extracted text worth scoring; anything below
// is treated as OCR noise and returns a zero result.
const minTextLength = 3

// profanitySubstrings is the fixed set used for graffiti detection. A token is
// only flagged when it does not overlap an include keyword, so legitimate
// brand terms are never reported.
var profanitySubstrings = []string{
	"fuck", "shit", "bitch", "cunt", "piss", "cock", "wank", "asshole",
}

// Score compares extracted text against the campaign's tag set using the
// default thresholds. When the tag set has no include keywords, autoKeywords
// (derived from campaign metadata) take their place.
func Score(text string, tags models.TagSet, autoKeywords []string) models.MatchResult {
	return ScoreWithOptions(text, tags, autoKeywords, DefaultOptions())
}

// ScoreWithOptions is Score with explicit thresholds.
//
// Each include keyword is tried against three rules, first hit wins:
// case-insensitive substring containment (raw or with punctuation stripped),
// then a sliding window of the keyword's length across the stripped text
// scored by normalized edit distance, then token containment in either
// direction. Exclude keywords only need substring or token containment; any
// hit later forces a wrong-ad outcome regardless of the include score.
func ScoreWithOptions(text string, tags models.TagSet, autoKeywords []string, opts Options) models.MatchResult {
	includes := effectiveKeywords(tags, autoKeywords)

	result := models.MatchResult{
		Matched:          []string{},
		Unmatched:        []string{},
		ExcludeHits:      []string{},
		SuspiciousTokens: []string{},
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minTextLength {
		result.Unmatched = append(result.Unmatched, includes...)
		return result
	}

	lower := strings.ToLower(trimmed)
	stripped := stripNonAlnum(lower)
	tokens := tokenize(lower)

	result.WordCount = len(tokens)
	result.TextSample = sample(trimmed, opts.SampleLength)

	for _, kw := range includes {
		if keywordMatches(kw, lower, stripped, tokens, opts.Similarity) {
			result.Matched = append(result.Matched, kw)
		} else {
			result.Unmatched = append(result.Unmatched, kw)
		}
	}

	for _, kw := range normalizeKeywords(tags.Exclude) {
		if strings.Contains(lower, kw) || tokenContains(tokens, kw) {
			result.ExcludeHits = append(result.ExcludeHits, kw)
		}
	}

	result.SuspiciousTokens = suspiciousTokens(tokens, includes)

	if n := len(includes); n > 0 {
		pct := float64(len(result.Matched)) / float64(n) * 100
		result.Score = int(math.Round(math.Min(100, pct)))
	}

	if expected := strings.TrimSpace(tags.ExpectedCopy); expected != "" {
		// WER also reports the raw error count; only the rate is kept.
		rate, _ := wer.WER(tokenize(strings.ToLower(expected)), tokens)
		result.CopyWER = &rate
	}

	return result
}

// AutoKeywords derives fallback include keywords from campaign metadata
// fields (campaign, advertiser and product names). Tokens of three or more
// characters are kept, lowercased and deduplicated in order.
func AutoKeywords(parts ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range parts {
		for _, tok := range tokenize(strings.ToLower(part)) {
			if len(tok) <= 2 {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

func effectiveKeywords(tags models.TagSet, autoKeywords []string) []string {
	if !tags.IsEmpty() {
		return normalizeKeywords(tags.Include)
	}
	return normalizeKeywords(autoKeywords)
}

func normalizeKeywords(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func keywordMatches(kw, lower, stripped string, tokens []string, similarity float64) bool {
	// Fast path: direct containment, raw or with punctuation stripped on
	// both sides. Catches the common case of clean OCR output.
	strippedKw := stripNonAlnum(kw)
	if strings.Contains(lower, kw) {
		return true
	}
	if strippedKw != "" && strings.Contains(stripped, strippedKw) {
		return true
	}

	// Sliding window: tolerate character-level OCR noise by scoring every
	// equal-length substring with normalized edit distance.
	if len(strippedKw) >= 3 && bestWindowSimilarity(strippedKw, stripped) >= similarity {
		return true
	}

	// Fallback: token containment in either direction. The keyword-contains-
	// token direction requires a token of three or more characters so short
	// particles cannot match.
	for _, tok := range tokens {
		if strings.Contains(tok, kw) {
			return true
		}
		if len(tok) >= 3 && strings.Contains(kw, tok) {
			return true
		}
	}
	return false
}

// bestWindowSimilarity slides a window of len(kw) across text and returns the
// best normalized similarity, 0-100.
func bestWindowSimilarity(kw, text string) float64 {
	n := len(kw)
	if n == 0 || len(text) < n {
		return 0
	}
	best := 0.0
	for i := 0; i+n <= len(text); i++ {
		dist := levenshtein.Distance(kw, text[i:i+n])
		sim := float64(n-dist) / float64(n) * 100
		if sim > best {
			best = sim
		}
	}
	return best
}

func suspiciousTokens(tokens, includes []string) []string {
	out := []string{}
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		flagged := false
		for _, bad := range profanitySubstrings {
			if strings.Contains(tok, bad) {
				flagged = true
				break
			}
		}
		if !flagged || overlapsKeyword(tok, includes) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func overlapsKeyword(tok string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(tok, kw) || strings.Contains(kw, tok) {
			return true
		}
	}
	return false
}

func tokenContains(tokens []string, kw string) bool {
	for _, tok := range tokens {
		if strings.Contains(tok, kw) {
			return true
		}
		if len(tok) >= 3 && strings.Contains(kw, tok) {
			return true
		}
	}
	return false
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func sample(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
