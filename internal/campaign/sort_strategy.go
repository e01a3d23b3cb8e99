package campaign

import (
	"strings"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// SortStrategy orders campaign groups within a tier.
type SortStrategy interface {
	Less(a, b *models.CampaignGroup) bool
	GetStrategyName() string
}

// LatestDescStrategy orders by most recent photo first.
type LatestDescStrategy struct{}

func (LatestDescStrategy) Less(a, b *models.CampaignGroup) bool {
	return a.LatestPhoto().After(b.LatestPhoto())
}

func (LatestDescStrategy) GetStrategyName() string { return "latest_desc" }

// LatestAscStrategy orders by oldest photo first.
type LatestAscStrategy struct{}

func (LatestAscStrategy) Less(a, b *models.CampaignGroup) bool {
	return a.LatestPhoto().Before(b.LatestPhoto())
}

func (LatestAscStrategy) GetStrategyName() string { return "latest_asc" }

// AdvertiserStrategy orders alphabetically by advertiser, campaigns without
// tracker metadata last.
type AdvertiserStrategy struct{}

func (AdvertiserStrategy) Less(a, b *models.CampaignGroup) bool {
	an, bn := advertiser(a), advertiser(b)
	if an == bn {
		return a.CampaignID < b.CampaignID
	}
	if an == "" {
		return false
	}
	if bn == "" {
		return true
	}
	return an < bn
}

func (AdvertiserStrategy) GetStrategyName() string { return "advertiser" }

func advertiser(g *models.CampaignGroup) string {
	if g.Tracker == nil {
		return ""
	}
	return strings.ToLower(g.Tracker.Advertiser)
}

// CampaignIDStrategy orders by campaign identity.
type CampaignIDStrategy struct{}

func (CampaignIDStrategy) Less(a, b *models.CampaignGroup) bool {
	return a.CampaignID < b.CampaignID
}

func (CampaignIDStrategy) GetStrategyName() string { return "campaign" }

// StrategyFor resolves a sort key to its strategy, defaulting to latest-first.
func StrategyFor(key string) SortStrategy {
	switch key {
	case "latest_asc":
		return LatestAscStrategy{}
	case "advertiser":
		return AdvertiserStrategy{}
	case "campaign":
		return CampaignIDStrategy{}
	default:
		return LatestDescStrategy{}
	}
}
