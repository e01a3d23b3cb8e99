package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/match"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// fakeExtractor returns canned text per photo file name and counts calls.
type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		texts: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeExtractor) ExtractText(ctx context.Context, res models.ImageResource) (models.TextExtraction, error) {
	key, err := res.Fetch(ctx)
	if err != nil {
		return models.TextExtraction{}, err
	}
	name := string(key)
	f.calls[name]++
	if err := f.errs[name]; err != nil {
		return models.TextExtraction{}, err
	}
	return models.TextExtraction{Text: f.texts[name], Confidence: 90}, nil
}

// keyResource hands its name back as the fetched bytes so the fake extractor
// can route responses.
type keyResource struct {
	name     string
	released bool
}

func (r *keyResource) Fetch(ctx context.Context) ([]byte, error) {
	if r.released {
		return nil, errors.New("resource released")
	}
	return []byte(r.name), nil
}

func (r *keyResource) Release() error {
	r.released = true
	return nil
}

func photo(campaignID, name string) models.PhotoDescriptor {
	return models.NewPhotoDescriptor(campaignID, name, time.Time{}, &keyResource{name: name})
}

func newTestOrchestrator(extractor TextExtractor) (*Orchestrator, *Store) {
	store := NewStore()
	return NewOrchestrator(store, extractor, nil, match.DefaultOptions(), 0), store
}

func TestAnalyzeBatch(t *testing.T) {
	ex := newFakeExtractor()
	ex.texts["a.jpg"] = "ACME SALE NOW"
	ex.texts["b.jpg"] = "ACME WINTER SALE"
	o, store := newTestOrchestrator(ex)

	photos := []models.PhotoDescriptor{photo("c1", "a.jpg"), photo("c1", "b.jpg")}
	tags := models.TagSet{Include: []string{"acme"}}

	result := o.AnalyzeBatch(context.Background(), photos, tags, BatchOptions{})

	if result.Analyzed != 2 || result.Failed != 0 || result.Skipped != 0 {
		t.Fatalf("batch result = %+v, want 2 analyzed", result)
	}
	a, ok := store.Get(photos[0].ID)
	if !ok {
		t.Fatal("analysis missing from store")
	}
	if a.Analyzing {
		t.Error("analysis still marked in-progress")
	}
	if a.Match.Score != 100 {
		t.Errorf("Score = %d, want 100", a.Match.Score)
	}
	if !a.Flags.Has(models.FlagVerified) {
		t.Errorf("flags = %v, want VERIFIED", a.Flags)
	}
	if a.Confidence != 90 {
		t.Errorf("Confidence = %v, want 90", a.Confidence)
	}
}

func TestAnalyzeBatchFailureIsolation(t *testing.T) {
	ex := newFakeExtractor()
	ex.texts["good.jpg"] = "ACME SALE"
	ex.errs["bad.jpg"] = errors.New("ocr backend unavailable")
	o, store := newTestOrchestrator(ex)

	photos := []models.PhotoDescriptor{photo("c1", "bad.jpg"), photo("c1", "good.jpg")}
	result := o.AnalyzeBatch(context.Background(), photos, models.TagSet{Include: []string{"acme"}}, BatchOptions{})

	if result.Failed != 1 || result.Analyzed != 1 {
		t.Fatalf("batch result = %+v, want 1 failed and 1 analyzed", result)
	}

	bad, _ := store.Get(models.PhotoID("c1", "bad.jpg"))
	if !bad.Flags.Has(models.FlagScanError) {
		t.Errorf("flags = %v, want SCAN_ERROR", bad.Flags)
	}
	if bad.Error == "" {
		t.Error("failed analysis is missing its error")
	}

	good, _ := store.Get(models.PhotoID("c1", "good.jpg"))
	if good.Error != "" || good.Match.Score != 100 {
		t.Errorf("good photo was affected by the failure: %+v", good)
	}
}

func TestAnalyzeBatchSkipsCompleted(t *testing.T) {
	ex := newFakeExtractor()
	ex.texts["a.jpg"] = "ACME SALE NOW"
	o, _ := newTestOrchestrator(ex)

	photos := []models.PhotoDescriptor{photo("c1", "a.jpg")}
	tags := models.TagSet{Include: []string{"acme"}}

	o.AnalyzeBatch(context.Background(), photos, tags, BatchOptions{})
	second := o.AnalyzeBatch(context.Background(), photos, tags, BatchOptions{})

	if second.Skipped != 1 || second.Analyzed != 0 {
		t.Errorf("second batch = %+v, want 1 skipped", second)
	}
	if ex.calls["a.jpg"] != 1 {
		t.Errorf("extractor called %d times, want 1", ex.calls["a.jpg"])
	}

	forced := o.AnalyzeBatch(context.Background(), photos, tags, BatchOptions{Force: true})
	if forced.Analyzed != 1 {
		t.Errorf("forced batch = %+v, want 1 analyzed", forced)
	}
	if ex.calls["a.jpg"] != 2 {
		t.Errorf("extractor called %d times after force, want 2", ex.calls["a.jpg"])
	}
}

func TestAnalyzeBatchCancellation(t *testing.T) {
	ex := newFakeExtractor()
	ex.texts["a.jpg"] = "ACME SALE"
	ex.texts["b.jpg"] = "ACME SALE"
	o, store := newTestOrchestrator(ex)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	photos := []models.PhotoDescriptor{photo("c1", "a.jpg"), photo("c1", "b.jpg")}
	result := o.AnalyzeBatch(ctx, photos, models.TagSet{Include: []string{"acme"}}, BatchOptions{})

	if !result.Cancelled {
		t.Error("batch did not report cancellation")
	}
	if _, ok := store.Get(photos[0].ID); ok {
		t.Error("cancelled batch still analyzed a photo")
	}
}

func TestAnalyzeBatchStoresSuggestions(t *testing.T) {
	ex := newFakeExtractor()
	ex.texts["a.jpg"] = "ACME WINTER SALE"
	ex.texts["b.jpg"] = "acme winter sale today"
	o, store := newTestOrchestrator(ex)

	photos := []models.PhotoDescriptor{photo("c1", "a.jpg"), photo("c1", "b.jpg")}
	o.AnalyzeBatch(context.Background(), photos, models.TagSet{}, BatchOptions{AutoKeywords: []string{"acme"}})

	suggestions := store.Suggestions("c1")
	if len(suggestions) == 0 {
		t.Fatal("no suggestions stored for campaign")
	}
	found := false
	for _, s := range suggestions {
		if s == "winter" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want winter present", suggestions)
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	o, _ := newTestOrchestrator(newFakeExtractor())
	result := o.AnalyzeBatch(context.Background(), nil, models.TagSet{}, BatchOptions{})
	if result.Analyzed != 0 || result.Failed != 0 || result.Cancelled {
		t.Errorf("empty batch = %+v", result)
	}
}
