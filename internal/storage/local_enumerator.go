package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// LocalEnumerator lists install photos from a directory tree with one
// subdirectory per campaign. It backs development setups and the shared
// drop-folder deployment.
type LocalEnumerator struct {
	root string
}

// NewLocalEnumerator builds an enumerator over the given root directory.
func NewLocalEnumerator(root string) (*LocalEnumerator, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("photo root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("photo root %s is not a directory", root)
	}
	return &LocalEnumerator{root: root}, nil
}

// Enumerate lists every photo under every campaign subdirectory.
func (l *LocalEnumerator) Enumerate(ctx context.Context) ([]models.PhotoDescriptor, error) {
	dirs, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read photo root: %w", err)
	}
	var photos []models.PhotoDescriptor
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		campaignPhotos, err := l.EnumerateCampaign(ctx, d.Name())
		if err != nil {
			return nil, err
		}
		photos = append(photos, campaignPhotos...)
	}
	return photos, nil
}

// EnumerateCampaign lists the photos in one campaign subdirectory. A missing
// directory yields an empty slice.
func (l *LocalEnumerator) EnumerateCampaign(ctx context.Context, campaignID string) ([]models.PhotoDescriptor, error) {
	dir := filepath.Join(l.root, campaignID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read campaign dir %s: %w", campaignID, err)
	}

	var photos []models.PhotoDescriptor
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		res := &fileResource{path: filepath.Join(dir, entry.Name())}
		photos = append(photos, models.NewPhotoDescriptor(campaignID, entry.Name(), info.ModTime(), res))
	}
	return photos, nil
}

// fileResource reads a photo file on demand and unlinks it on release.
type fileResource struct {
	path string

	mu       sync.Mutex
	released bool
}

func (r *fileResource) Fetch(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	released := r.released
	r.mu.Unlock()
	if released {
		return nil, fmt.Errorf("file resource %s already released", r.path)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", r.path, err)
	}
	return data, nil
}

func (r *fileResource) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove photo %s: %w", r.path, err)
	}
	return nil
}
