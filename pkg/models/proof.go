package models

import "time"

// PhotoProof is the durable, lightweight record of one verified photo. It
// carries a compact visual digest rather than the full image bytes.
type PhotoProof struct {
	PhotoID    string         `json:"photo_id"`
	FileName   string         `json:"file_name"`
	Structural StructuralMeta `json:"structural"`
	Digest     []byte         `json:"digest,omitempty"`
	Score      int            `json:"score"`
	Flags      FlagSet        `json:"flags"`
	Matched    []string       `json:"matched"`
	Unmatched  []string       `json:"unmatched"`
	Confidence float64        `json:"confidence,omitempty"`
}

// ProofSummary aggregates a record's entries. It is always recomputed over the
// full merged set, never over a single save batch.
type ProofSummary struct {
	Total         int     `json:"total"`
	Verified      int     `json:"verified"`
	Issues        int     `json:"issues"`
	AverageScore  float64 `json:"average_score"`
	DistinctSites int     `json:"distinct_sites"`
}

// ProofRecord is the durable per-campaign proof of performance. Entries are
// unique by photo identity; saves only add or overwrite entries, never drop
// them.
type ProofRecord struct {
	CampaignID  string       `json:"campaign_id"`
	Entries     []PhotoProof `json:"entries"`
	Summary     ProofSummary `json:"summary"`
	ConfirmedAt time.Time    `json:"confirmed_at"`
}

// Entry returns the entry with the given photo identity, or nil.
func (r *ProofRecord) Entry(photoID string) *PhotoProof {
	for i := range r.Entries {
		if r.Entries[i].PhotoID == photoID {
			return &r.Entries[i]
		}
	}
	return nil
}

// Summarize recomputes the summary over all entries.
func Summarize(entries []PhotoProof) ProofSummary {
	s := ProofSummary{Total: len(entries)}
	if len(entries) == 0 {
		return s
	}
	sites := make(map[string]struct{})
	scoreSum := 0
	for _, e := range entries {
		scoreSum += e.Score
		if e.Flags.Has(FlagVerified) {
			s.Verified++
		}
		if e.Flags.HasIssue() {
			s.Issues++
		}
		if e.Structural.SiteID != "" {
			sites[e.Structural.SiteID] = struct{}{}
		}
	}
	s.AverageScore = float64(scoreSum) / float64(len(entries))
	s.DistinctSites = len(sites)
	return s
}
