package models

import "time"

// TrackerInfo is the read-only campaign metadata joined into groups.
type TrackerInfo struct {
	CampaignID  string `json:"campaign_id"`
	Advertiser  string `json:"advertiser"`
	Product     string `json:"product,omitempty"`
	Market      string `json:"market,omitempty"`
	Stage       string `json:"stage"`
	ExpectedQty int    `json:"expected_qty"`
	Owner       string `json:"owner,omitempty"`
}

// CampaignGroup is the on-demand aggregation of one campaign's evidence:
// live photos, the prior proof record if any, and derived completion figures.
// It is computed, never stored.
type CampaignGroup struct {
	CampaignID string            `json:"campaign_id"`
	Tracker    *TrackerInfo      `json:"tracker,omitempty"`
	Photos     []PhotoDescriptor `json:"photos"`
	Proof      *ProofRecord      `json:"proof,omitempty"`

	PhotoCount int  `json:"photo_count"`
	Progress   int  `json:"progress"`
	IsComplete bool `json:"is_complete"`
	Missing    int  `json:"missing"`
	NoPhotos   bool `json:"no_photos"`
}

// LatestPhoto returns the most recent live photo modification time, falling
// back to the proof confirmation time for record-only groups.
func (g *CampaignGroup) LatestPhoto() time.Time {
	var latest time.Time
	for _, p := range g.Photos {
		if p.Modified.After(latest) {
			latest = p.Modified
		}
	}
	if latest.IsZero() && g.Proof != nil {
		latest = g.Proof.ConfirmedAt
	}
	return latest
}
