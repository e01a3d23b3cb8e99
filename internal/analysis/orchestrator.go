package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/logger"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/observer"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/match"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// TextExtractor is the external OCR capability. Any error is treated as a
// per-photo scan failure, never as a batch failure.
type TextExtractor interface {
	ExtractText(ctx context.Context, res models.ImageResource) (models.TextExtraction, error)
}

// BatchOptions controls one AnalyzeBatch call.
type BatchOptions struct {
	// Force clears prior successful analyses for the selected photos and
	// re-runs extraction.
	Force bool

	// AutoKeywords is the fallback include list used when the campaign has
	// no configured tags.
	AutoKeywords []string
}

// BatchResult reports what one AnalyzeBatch call did.
type BatchResult struct {
	BatchID   string                 `json:"batch_id"`
	Analyzed  int                    `json:"analyzed"`
	Failed    int                    `json:"failed"`
	Skipped   int                    `json:"skipped"`
	Cancelled bool                   `json:"cancelled"`
	Analyses  []models.PhotoAnalysis `json:"analyses"`
}

// Orchestrator sequences OCR extraction over a batch of photos and applies
// the matcher and flag derivation to each result.
type Orchestrator struct {
	store     *Store
	extractor TextExtractor
	events    observer.Subject
	opts      match.Options

	// scanDelay is the cooperative yield between photos; extraction is
	// resource-heavy and must not starve the host.
	scanDelay time.Duration
}

// NewOrchestrator wires an orchestrator over the shared store.
func NewOrchestrator(store *Store, extractor TextExtractor, events observer.Subject, opts match.Options, scanDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		store:     store,
		extractor: extractor,
		events:    events,
		opts:      opts,
		scanDelay: scanDelay,
	}
}

// AnalyzeBatch processes photos one at a time, in input order. Completed
// analyses are committed to the shared store as soon as each photo finishes,
// so callers can cancel between photos without losing finished work. Photos
// that already have a successful analysis are skipped unless Force is set.
// After the loop, suggestions for the campaign are recomputed from every
// cached text.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, photos []models.PhotoDescriptor, tags models.TagSet, bo BatchOptions) BatchResult {
	result := BatchResult{BatchID: uuid.NewString()}
	if len(photos) == 0 {
		return result
	}
	campaignID := photos[0].CampaignID

	o.notify(ctx, observer.BatchEvent{
		EventType:  observer.BatchStarted,
		Timestamp:  time.Now().UTC(),
		BatchID:    result.BatchID,
		CampaignID: campaignID,
		Metadata:   map[string]interface{}{"photos": len(photos), "force": bo.Force},
	})

	for i, photo := range photos {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			break
		}
		if i > 0 && o.scanDelay > 0 {
			// Yield between photos; the in-flight extraction itself is not
			// preemptible.
			select {
			case <-ctx.Done():
				result.Cancelled = true
			case <-time.After(o.scanDelay):
			}
			if result.Cancelled {
				break
			}
		}

		if prior, ok := o.store.Get(photo.ID); ok && prior.Completed() && !bo.Force {
			result.Skipped++
			result.Analyses = append(result.Analyses, prior)
			continue
		}
		if bo.Force {
			o.store.Delete(photo.ID)
		}

		analysis := o.analyzeOne(ctx, photo, tags, bo.AutoKeywords, result.BatchID)
		result.Analyses = append(result.Analyses, analysis)
		if analysis.Error != "" {
			result.Failed++
		} else {
			result.Analyzed++
		}
	}

	o.refreshSuggestions(campaignID)

	o.notify(ctx, observer.BatchEvent{
		EventType:  observer.BatchCompleted,
		Timestamp:  time.Now().UTC(),
		BatchID:    result.BatchID,
		CampaignID: campaignID,
		Metadata: map[string]interface{}{
			"analyzed":  result.Analyzed,
			"failed":    result.Failed,
			"skipped":   result.Skipped,
			"cancelled": result.Cancelled,
		},
	})

	return result
}

// analyzeOne runs extraction and scoring for a single photo and commits the
// outcome to the shared store. Failures are isolated to the photo.
func (o *Orchestrator) analyzeOne(ctx context.Context, photo models.PhotoDescriptor, tags models.TagSet, autoKeywords []string, batchID string) models.PhotoAnalysis {
	start := time.Now()

	analysis := models.PhotoAnalysis{
		PhotoID:    photo.ID,
		CampaignID: photo.CampaignID,
		Analyzing:  true,
	}
	o.store.Put(analysis)

	extraction, err := o.extractor.ExtractText(ctx, photo.Resource)
	if err != nil {
		analysis.Analyzing = false
		analysis.Error = err.Error()
		analysis.Flags = models.FlagSet{models.FlagScanError}
		o.store.Put(analysis)

		logger.WithError(err).WithFields(logrus.Fields{
			"photo_id":    photo.ID,
			"campaign_id": photo.CampaignID,
		}).Error("Text extraction failed")
		o.notify(ctx, observer.BatchEvent{
			EventType:  observer.PhotoFailed,
			Timestamp:  time.Now().UTC(),
			BatchID:    batchID,
			CampaignID: photo.CampaignID,
			PhotoID:    photo.ID,
			ErrorMsg:   err.Error(),
		})
		return analysis
	}

	analysis.Analyzing = false
	analysis.Text = extraction.Text
	analysis.Confidence = extraction.Confidence
	analysis.Match = match.ScoreWithOptions(extraction.Text, tags, autoKeywords, o.opts)
	analysis.Flags = match.DeriveFlags(analysis.Match, len(extraction.Text), o.opts)
	o.store.Put(analysis)

	o.notify(ctx, observer.BatchEvent{
		EventType:  observer.PhotoAnalyzed,
		Timestamp:  time.Now().UTC(),
		BatchID:    batchID,
		CampaignID: photo.CampaignID,
		PhotoID:    photo.ID,
		Score:      analysis.Match.Score,
		Duration:   time.Since(start),
	})
	return analysis
}

// refreshSuggestions recomputes the campaign's keyword candidates from every
// successfully extracted text currently cached.
func (o *Orchestrator) refreshSuggestions(campaignID string) {
	var texts []string
	for _, a := range o.store.ForCampaign(campaignID) {
		if a.Completed() {
			texts = append(texts, a.Text)
		}
	}
	o.store.SetSuggestions(campaignID, match.Suggest(texts))
}

func (o *Orchestrator) notify(ctx context.Context, event observer.BatchEvent) {
	if o.events != nil {
		o.events.NotifyObservers(ctx, event)
	}
}
