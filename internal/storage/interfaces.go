package storage

import (
	"context"
	"path"
	"strings"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// PhotoEnumerator lists the candidate install photos of a source. Identity is
// stable across enumerations; resources are freshly allocated on each call.
type PhotoEnumerator interface {
	// Enumerate lists every photo across all campaign folders.
	Enumerate(ctx context.Context) ([]models.PhotoDescriptor, error)

	// EnumerateCampaign lists the photos of a single campaign folder. An
	// unknown campaign yields an empty slice, not an error.
	EnumerateCampaign(ctx context.Context, campaignID string) ([]models.PhotoDescriptor, error)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}
