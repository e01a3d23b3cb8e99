package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/validation"
)

// manifestEntry is one photo row in a remote source manifest.
type manifestEntry struct {
	CampaignID string    `json:"campaign_id"`
	FileName   string    `json:"file_name"`
	URL        string    `json:"url"`
	Modified   time.Time `json:"modified,omitempty"`
}

// HTTPEnumerator lists install photos from a remote manifest endpoint. The
// manifest at <base>/manifest.json names each photo and its download URL;
// photo bytes are fetched lazily per resource.
type HTTPEnumerator struct {
	baseURL   string
	client    *http.Client
	validator *validation.URLValidator
}

// NewHTTPEnumerator builds an enumerator over a manifest base URL. The
// underlying transport pools connections; photo downloads reuse it.
func NewHTTPEnumerator(baseURL string) *HTTPEnumerator {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("too many redirects (limit: 3)")
			}
			return nil
		},
	}
	return &HTTPEnumerator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		validator: validation.NewURLValidator(),
	}
}

// Enumerate fetches the manifest and builds a descriptor per valid entry.
// Entries with missing fields, non-image names or invalid URLs are skipped.
func (h *HTTPEnumerator) Enumerate(ctx context.Context) ([]models.PhotoDescriptor, error) {
	entries, err := h.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	var photos []models.PhotoDescriptor
	for _, e := range entries {
		if e.CampaignID == "" || e.FileName == "" || !isImageFile(e.FileName) {
			continue
		}
		if err := h.validator.ValidatePhotoURL(e.URL); err != nil {
			continue
		}
		res := &httpResource{client: h.client, url: e.URL}
		photos = append(photos, models.NewPhotoDescriptor(e.CampaignID, e.FileName, e.Modified, res))
	}
	return photos, nil
}

// EnumerateCampaign filters the manifest down to one campaign.
func (h *HTTPEnumerator) EnumerateCampaign(ctx context.Context, campaignID string) ([]models.PhotoDescriptor, error) {
	all, err := h.Enumerate(ctx)
	if err != nil {
		return nil, err
	}
	var photos []models.PhotoDescriptor
	for _, p := range all {
		if p.CampaignID == campaignID {
			photos = append(photos, p)
		}
	}
	return photos, nil
}

func (h *HTTPEnumerator) fetchManifest(ctx context.Context) ([]manifestEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/manifest.json", nil)
	if err != nil {
		return nil, fmt.Errorf("manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch manifest: status code %d", resp.StatusCode)
	}

	var entries []manifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return entries, nil
}

// httpResource downloads a photo over HTTP. Transient failures are retried
// up to three times; 4xx responses fail immediately.
type httpResource struct {
	client *http.Client
	url    string

	mu       sync.Mutex
	released bool
}

func (r *httpResource) Fetch(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	released := r.released
	r.mu.Unlock()
	if released {
		return nil, fmt.Errorf("http resource %s already released", r.url)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid photo URL: %w", err)
		}
		req.Header.Set("Accept", "image/jpeg, image/png, */*")

		resp, err := r.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			return data, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("status code %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}
	return nil, fmt.Errorf("failed to fetch photo after retries: %w", lastErr)
}

// Release drops the reference. Remote sources are not mutated; the manifest
// owner retires entries on its own schedule.
func (r *httpResource) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
	return nil
}
