package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// MemoryProofStore keeps proof records in memory behind an RWMutex. It backs
// development setups without a database and the test suite.
type MemoryProofStore struct {
	mu      sync.RWMutex
	records map[string]models.ProofRecord
}

// NewMemoryProofStore constructs an empty in-memory proof store.
func NewMemoryProofStore() *MemoryProofStore {
	return &MemoryProofStore{
		records: make(map[string]models.ProofRecord),
	}
}

// GetAll returns every stored record ordered by campaign identity.
func (m *MemoryProofStore) GetAll(ctx context.Context) ([]models.ProofRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ProofRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampaignID < out[j].CampaignID })
	return out, nil
}

// Get returns the record for a campaign.
func (m *MemoryProofStore) Get(ctx context.Context, campaignID string) (*models.ProofRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[campaignID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

// Put upserts a record.
func (m *MemoryProofStore) Put(ctx context.Context, record models.ProofRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.CampaignID] = record
	return nil
}

// Delete removes a record.
func (m *MemoryProofStore) Delete(ctx context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, campaignID)
	return nil
}

// MemoryTrackerSource is an in-memory tracker metadata source, writable so
// operators can sync tracker rows over the API.
type MemoryTrackerSource struct {
	mu       sync.RWMutex
	trackers map[string]models.TrackerInfo
}

// NewMemoryTrackerSource constructs an empty tracker source.
func NewMemoryTrackerSource() *MemoryTrackerSource {
	return &MemoryTrackerSource{
		trackers: make(map[string]models.TrackerInfo),
	}
}

// Get returns the tracker metadata for a campaign.
func (m *MemoryTrackerSource) Get(campaignID string) (models.TrackerInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tr, ok := m.trackers[campaignID]
	return tr, ok
}

// All returns a copy of every tracker entry.
func (m *MemoryTrackerSource) All() map[string]models.TrackerInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]models.TrackerInfo, len(m.trackers))
	for k, v := range m.trackers {
		out[k] = v
	}
	return out
}

// Put upserts tracker metadata for a campaign.
func (m *MemoryTrackerSource) Put(tr models.TrackerInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackers[tr.CampaignID] = tr
}

// MemoryTagStore is an in-memory tag configuration store. Tag edits are
// last-write-wins; there is a single operator per session.
type MemoryTagStore struct {
	mu   sync.RWMutex
	tags map[string]models.TagSet
}

// NewMemoryTagStore constructs an empty tag store.
func NewMemoryTagStore() *MemoryTagStore {
	return &MemoryTagStore{
		tags: make(map[string]models.TagSet),
	}
}

// Get returns the tag set for a campaign; absent campaigns yield the zero
// set, which makes the matcher fall back to auto keywords.
func (m *MemoryTagStore) Get(campaignID string) models.TagSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tags[campaignID]
}

// Put replaces the tag set for a campaign.
func (m *MemoryTagStore) Put(campaignID string, tags models.TagSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[campaignID] = tags
}
