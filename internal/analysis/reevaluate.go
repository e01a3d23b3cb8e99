package analysis

import (
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/logger"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/match"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// Reevaluate re-scores every cached extraction for a campaign against a new
// tag set, without touching OCR. Only analyses that are complete, error-free
// and non-empty are rewritten; analyses of other campaigns are never touched.
// Because scoring is a pure function of (text, tags), calling this repeatedly
// with the same inputs is idempotent.
func (o *Orchestrator) Reevaluate(campaignID string, tags models.TagSet, autoKeywords []string) int {
	updated := 0
	for _, a := range o.store.ForCampaign(campaignID) {
		if !a.Completed() {
			continue
		}
		a.Match = match.ScoreWithOptions(a.Text, tags, autoKeywords, o.opts)
		a.Flags = match.DeriveFlags(a.Match, len(a.Text), o.opts)
		o.store.Put(a)
		updated++
	}

	logger.WithCampaign(campaignID).WithField("updated", updated).Info("Re-evaluated cached analyses")
	return updated
}
