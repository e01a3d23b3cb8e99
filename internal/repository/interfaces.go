package repository

import (
	"context"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// ProofStore is the durable keyed store for proof records. Single-record
// atomicity is the only transactional guarantee the engine relies on.
type ProofStore interface {
	// GetAll returns every stored proof record.
	GetAll(ctx context.Context) ([]models.ProofRecord, error)

	// Get returns the record for a campaign, or ErrRecordNotFound.
	Get(ctx context.Context, campaignID string) (*models.ProofRecord, error)

	// Put upserts a record by campaign identity.
	Put(ctx context.Context, record models.ProofRecord) error

	// Delete removes a campaign's record. Deleting an absent record is a
	// no-op.
	Delete(ctx context.Context, campaignID string) error
}

// TrackerSource is the read-only campaign metadata lookup.
type TrackerSource interface {
	Get(campaignID string) (models.TrackerInfo, bool)
	All() map[string]models.TrackerInfo
}

// TagStore holds per-campaign keyword configuration.
type TagStore interface {
	Get(campaignID string) models.TagSet
	Put(campaignID string, tags models.TagSet)
}
