// Package analysis owns the transient per-photo analysis state and the
// orchestration that fills it: sequential OCR extraction, scoring, and cheap
// re-scoring after tag edits.
package analysis

import (
	"sort"
	"sync"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// Store is the single mutable shared structure of the engine: photo analyses
// keyed by photo identity plus keyword suggestions keyed by campaign. The
// orchestrator creates entries, the re-evaluator rewrites them in place and
// the persistence manager deletes them after a successful merge.
type Store struct {
	mu          sync.RWMutex
	analyses    map[string]models.PhotoAnalysis
	suggestions map[string][]string
}

// NewStore creates an empty analysis store.
func NewStore() *Store {
	return &Store{
		analyses:    make(map[string]models.PhotoAnalysis),
		suggestions: make(map[string][]string),
	}
}

// Get returns a copy of the analysis for a photo, if present.
func (s *Store) Get(photoID string) (models.PhotoAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[photoID]
	return a, ok
}

// Put inserts or replaces an analysis.
func (s *Store) Put(a models.PhotoAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.PhotoID] = a
}

// Delete removes the analysis for a photo. Removing an absent photo is a
// no-op.
func (s *Store) Delete(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, photoID)
}

// ForCampaign returns copies of all analyses belonging to a campaign, ordered
// by photo identity for stable iteration.
func (s *Store) ForCampaign(campaignID string) []models.PhotoAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PhotoAnalysis
	for _, a := range s.analyses {
		if a.CampaignID == campaignID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhotoID < out[j].PhotoID })
	return out
}

// SetSuggestions stores the ranked keyword candidates for a campaign.
func (s *Store) SetSuggestions(campaignID string, keywords []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[campaignID] = keywords
}

// Suggestions returns the stored keyword candidates for a campaign.
func (s *Store) Suggestions(campaignID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestions[campaignID]
}

// ClearCampaign drops all analyses and suggestions for a campaign. Used when
// a campaign's live set has been merged into a proof record or its source
// folder is unlinked.
func (s *Store) ClearCampaign(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.analyses {
		if a.CampaignID == campaignID {
			delete(s.analyses, id)
		}
	}
	delete(s.suggestions, campaignID)
}
