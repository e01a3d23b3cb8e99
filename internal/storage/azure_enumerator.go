package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// AzureEnumerator lists install photos from an Azure blob container. Blobs
// are laid out one virtual folder per campaign: "<campaign_id>/<file_name>".
type AzureEnumerator struct {
	client    *azblob.Client
	container string
}

// NewAzureEnumerator builds an enumerator against a storage account using
// shared key credentials.
func NewAzureEnumerator(accountName, accountKey, container string) (*AzureEnumerator, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureEnumerator{client: client, container: container}, nil
}

// Enumerate lists every photo blob in the container.
func (a *AzureEnumerator) Enumerate(ctx context.Context) ([]models.PhotoDescriptor, error) {
	return a.list(ctx, "")
}

// EnumerateCampaign lists the photo blobs under one campaign folder.
func (a *AzureEnumerator) EnumerateCampaign(ctx context.Context, campaignID string) ([]models.PhotoDescriptor, error) {
	return a.list(ctx, campaignID+"/")
}

func (a *AzureEnumerator) list(ctx context.Context, prefix string) ([]models.PhotoDescriptor, error) {
	var photos []models.PhotoDescriptor

	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := *item.Name
			campaignID, fileName, ok := splitBlobPath(name)
			if !ok || !isImageFile(fileName) {
				continue
			}
			var modified time.Time
			if item.Properties != nil && item.Properties.LastModified != nil {
				modified = *item.Properties.LastModified
			}
			res := &blobResource{client: a.client, container: a.container, blobName: name}
			photos = append(photos, models.NewPhotoDescriptor(campaignID, fileName, modified, res))
		}
	}
	return photos, nil
}

// splitBlobPath splits "<campaign_id>/<file_name>". Blobs nested deeper or at
// the container root are not candidate photos.
func splitBlobPath(name string) (campaignID, fileName string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// blobResource streams a single blob's bytes on demand.
type blobResource struct {
	client    *azblob.Client
	container string
	blobName  string

	mu       sync.Mutex
	released bool
}

func (r *blobResource) Fetch(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	released := r.released
	r.mu.Unlock()
	if released {
		return nil, fmt.Errorf("blob resource %s already released", r.blobName)
	}

	resp, err := r.client.DownloadStream(ctx, r.container, r.blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", r.blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", r.blobName, err)
	}
	return data, nil
}

func (r *blobResource) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	_, err := r.client.DeleteBlob(context.Background(), r.container, r.blobName, nil)
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", r.blobName, err)
	}
	return nil
}
