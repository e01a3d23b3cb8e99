// Package proof builds and persists the durable per-campaign proof records
// and owns the release of ephemeral photo resources once they are merged.
package proof

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/analysis"
	apperrors "github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/errors"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/logger"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/observer"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/repository"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// SaveReport tells the caller what a save actually did.
type SaveReport struct {
	Added    int                 `json:"added"`
	Existing int                 `json:"existing"`
	Total    int                 `json:"total"`
	Summary  models.ProofSummary `json:"summary"`
}

// Manager merges analyzed photos into durable proof records.
type Manager struct {
	store    repository.ProofStore
	analyses *analysis.Store
	events   observer.Subject

	digestMaxDim  int
	digestQuality int
}

// NewManager wires a persistence manager.
func NewManager(store repository.ProofStore, analyses *analysis.Store, events observer.Subject, digestMaxDim, digestQuality int) *Manager {
	return &Manager{
		store:         store,
		analyses:      analyses,
		events:        events,
		digestMaxDim:  digestMaxDim,
		digestQuality: digestQuality,
	}
}

// ConfirmAndSave merges a campaign group's live photos into its durable proof
// record. Existing entries win on duplicate identity; the summary is always
// recomputed over the full merged set. Ephemeral resources and transient
// analyses are released only after the store write succeeds, so a failed save
// can simply be retried.
func (m *Manager) ConfirmAndSave(ctx context.Context, group models.CampaignGroup) (models.ProofRecord, SaveReport, error) {
	existing, err := m.store.Get(ctx, group.CampaignID)
	if err != nil && err != repository.ErrRecordNotFound {
		return models.ProofRecord{}, SaveReport{}, apperrors.NewPersistenceError("failed to load existing proof record", err)
	}

	record := models.ProofRecord{CampaignID: group.CampaignID}
	if existing != nil {
		record.Entries = append(record.Entries, existing.Entries...)
	}

	report := SaveReport{}
	for _, photo := range group.Photos {
		if record.Entry(photo.ID) != nil {
			// Dedup by identity: the already-persisted entry wins.
			report.Existing++
			continue
		}
		record.Entries = append(record.Entries, m.buildEntry(ctx, photo))
		report.Added++
	}

	record.Summary = models.Summarize(record.Entries)
	record.ConfirmedAt = time.Now().UTC()

	if err := m.store.Put(ctx, record); err != nil {
		// Nothing has been released yet; the live set is intact for retry.
		return models.ProofRecord{}, SaveReport{}, apperrors.NewPersistenceError("failed to write proof record", err)
	}

	// Write succeeded: the live photos now live in the record, so their
	// resources and transient state are no longer needed.
	for _, photo := range group.Photos {
		if photo.Resource != nil {
			if err := photo.Resource.Release(); err != nil {
				logger.WithPhoto(photo.ID).WithError(err).Warn("Failed to release photo resource")
			}
		}
		m.analyses.Delete(photo.ID)
	}
	m.analyses.ClearCampaign(group.CampaignID)

	report.Total = len(record.Entries)
	report.Summary = record.Summary

	logger.WithFields(logrus.Fields{
		"campaign_id": group.CampaignID,
		"added":       report.Added,
		"existing":    report.Existing,
		"total":       report.Total,
	}).Info("Proof record saved")
	if m.events != nil {
		m.events.NotifyObservers(ctx, observer.BatchEvent{
			EventType:  observer.ProofSaved,
			Timestamp:  record.ConfirmedAt,
			CampaignID: group.CampaignID,
			Metadata:   map[string]interface{}{"added": report.Added, "total": report.Total},
		})
	}

	return record, report, nil
}

// buildEntry assembles the durable entry for one photo. Saving is allowed
// without prior analysis, in which case score and flags default to empty.
func (m *Manager) buildEntry(ctx context.Context, photo models.PhotoDescriptor) models.PhotoProof {
	entry := models.PhotoProof{
		PhotoID:    photo.ID,
		FileName:   photo.FileName,
		Structural: photo.Structural,
		Flags:      models.FlagSet{},
		Matched:    []string{},
		Unmatched:  []string{},
	}

	if a, ok := m.analyses.Get(photo.ID); ok && !a.Analyzing {
		entry.Score = a.Match.Score
		entry.Flags = a.Flags
		entry.Matched = a.Match.Matched
		entry.Unmatched = a.Match.Unmatched
		entry.Confidence = a.Confidence
	}

	if photo.Resource != nil {
		if data, err := photo.Resource.Fetch(ctx); err == nil {
			if digest, err := Digest(data, m.digestMaxDim, m.digestQuality); err == nil {
				entry.Digest = digest
			} else {
				logger.WithPhoto(photo.ID).WithError(err).Warn("Failed to build photo digest")
			}
		} else {
			logger.WithPhoto(photo.ID).WithError(err).Warn("Failed to fetch photo for digest")
		}
	}

	return entry
}
