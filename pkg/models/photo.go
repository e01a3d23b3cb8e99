package models

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ImageResource is a handle to a photo's backing bytes. Resources are
// ephemeral and exclusively owned by their PhotoDescriptor: Fetch may be
// called any number of times before Release, and Release must be idempotent.
// Fetching a released resource returns an error.
type ImageResource interface {
	Fetch(ctx context.Context) ([]byte, error)
	Release() error
}

// StructuralMeta is parsed from the structured filename convention
// SITE_DIRECTION_SEQUENCE (e.g. "LAX-0412_N_03.jpg"). All fields are optional;
// photos with free-form names simply carry an empty StructuralMeta.
type StructuralMeta struct {
	SiteID    string `json:"site_id,omitempty"`
	Direction string `json:"direction,omitempty"`
	Sequence  int    `json:"sequence,omitempty"`
}

// PhotoDescriptor references one candidate install photo. Identity is derived
// from the campaign and file name and is stable across enumerations of the
// same source.
type PhotoDescriptor struct {
	ID         string         `json:"id"`
	CampaignID string         `json:"campaign_id"`
	FileName   string         `json:"file_name"`
	Structural StructuralMeta `json:"structural"`
	Modified   time.Time      `json:"modified,omitempty"`

	// Resource is never serialized; it is released when the photo is merged
	// into a proof record or its source is unlinked.
	Resource ImageResource `json:"-"`
}

// PhotoID derives the stable per-campaign identity for a file name.
func PhotoID(campaignID, fileName string) string {
	return fmt.Sprintf("%s/%s", campaignID, strings.ToLower(fileName))
}

var structuralPattern = regexp.MustCompile(`^([A-Za-z]{2,}-?\d+)_(N|NE|E|SE|S|SW|W|NW)_(\d{1,3})\.`)

// ParseStructuralMeta extracts site/direction/sequence from the filename
// convention when present. Unrecognized names yield the zero value.
func ParseStructuralMeta(fileName string) StructuralMeta {
	base := path.Base(fileName)
	m := structuralPattern.FindStringSubmatch(base)
	if m == nil {
		return StructuralMeta{}
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return StructuralMeta{}
	}
	return StructuralMeta{
		SiteID:    strings.ToUpper(m[1]),
		Direction: m[2],
		Sequence:  seq,
	}
}

// NewPhotoDescriptor builds a descriptor for an enumerated file, deriving
// identity and structural metadata from the name.
func NewPhotoDescriptor(campaignID, fileName string, modified time.Time, res ImageResource) PhotoDescriptor {
	return PhotoDescriptor{
		ID:         PhotoID(campaignID, fileName),
		CampaignID: campaignID,
		FileName:   fileName,
		Structural: ParseStructuralMeta(fileName),
		Modified:   modified,
		Resource:   res,
	}
}
