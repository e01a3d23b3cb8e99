// Package campaign groups live photos and persisted proof records into
// per-campaign views for the operator.
package campaign

import (
	"math"
	"sort"
	"strings"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// popStages are tracker stages for which a campaign still needs install
// evidence; trackers in these stages surface as placeholder groups even with
// no photos yet.
var popStages = map[string]struct{}{
	"posted":       {},
	"installed":    {},
	"verification": {},
}

// GroupOptions filters and orders the aggregation.
type GroupOptions struct {
	Sort           string
	Market         string
	OnlyIncomplete bool
}

// GroupByCampaign joins live photos, tracker metadata and persisted proof
// records into campaign groups. Groups with live photos come first, then
// groups with only a saved proof, then empty placeholders; within a tier the
// configured sort strategy applies.
func GroupByCampaign(live []models.PhotoDescriptor, trackers map[string]models.TrackerInfo, records map[string]*models.ProofRecord, opts GroupOptions) []models.CampaignGroup {
	byCampaign := make(map[string]*models.CampaignGroup)

	for _, p := range live {
		g, ok := byCampaign[p.CampaignID]
		if !ok {
			g = &models.CampaignGroup{CampaignID: p.CampaignID}
			byCampaign[p.CampaignID] = g
		}
		g.Photos = append(g.Photos, p)
	}

	// Campaigns with a saved proof but no live photos are shown from the
	// record alone.
	for id, rec := range records {
		if _, ok := byCampaign[id]; !ok {
			byCampaign[id] = &models.CampaignGroup{CampaignID: id}
		}
		byCampaign[id].Proof = rec
	}

	// Trackers in a POP-relevant stage with no evidence at all become
	// placeholder groups so the operator sees what is still owed.
	for id, tr := range trackers {
		if _, ok := byCampaign[id]; !ok {
			if _, relevant := popStages[strings.ToLower(tr.Stage)]; relevant {
				byCampaign[id] = &models.CampaignGroup{CampaignID: id, NoPhotos: true}
			}
		}
	}

	groups := make([]models.CampaignGroup, 0, len(byCampaign))
	for id, g := range byCampaign {
		if tr, ok := trackers[id]; ok {
			trCopy := tr
			g.Tracker = &trCopy
		}
		derive(g)
		if opts.Market != "" && (g.Tracker == nil || !strings.EqualFold(g.Tracker.Market, opts.Market)) {
			continue
		}
		if opts.OnlyIncomplete && g.IsComplete {
			continue
		}
		groups = append(groups, *g)
	}

	strategy := StrategyFor(opts.Sort)
	sort.SliceStable(groups, func(i, j int) bool {
		ti, tj := tier(&groups[i]), tier(&groups[j])
		if ti != tj {
			return ti < tj
		}
		return strategy.Less(&groups[i], &groups[j])
	})

	return groups
}

// derive fills the computed completion figures on a group.
func derive(g *models.CampaignGroup) {
	g.PhotoCount = len(g.Photos)
	if g.PhotoCount == 0 && g.Proof != nil {
		g.PhotoCount = len(g.Proof.Entries)
	}
	g.NoPhotos = g.PhotoCount == 0

	if g.Tracker == nil || g.Tracker.ExpectedQty <= 0 {
		return
	}
	qty := g.Tracker.ExpectedQty
	g.Progress = int(math.Min(100, math.Round(float64(g.PhotoCount)/float64(qty)*100)))
	g.IsComplete = g.PhotoCount >= qty
	if missing := qty - g.PhotoCount; missing > 0 {
		g.Missing = missing
	}
}

// tier ranks live-photo groups ahead of record-only groups ahead of empty
// placeholders.
func tier(g *models.CampaignGroup) int {
	switch {
	case len(g.Photos) > 0:
		return 0
	case g.Proof != nil:
		return 1
	default:
		return 2
	}
}
