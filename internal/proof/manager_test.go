package proof

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/analysis"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/repository"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// stubResource tracks fetch/release calls; bytes are deliberately not a
// decodable image, digest failures must not fail a save.
type stubResource struct {
	fetched  int
	released int
}

func (r *stubResource) Fetch(ctx context.Context) ([]byte, error) {
	r.fetched++
	return []byte("not-an-image"), nil
}

func (r *stubResource) Release() error {
	r.released++
	return nil
}

// faultyReleaseResource fails its unlink; a save must still complete once
// the record is written.
type faultyReleaseResource struct {
	stubResource
}

func (r *faultyReleaseResource) Release() error {
	r.released++
	return errors.New("unlink failed")
}

type failingStore struct {
	*repository.MemoryProofStore
}

func (f *failingStore) Put(ctx context.Context, record models.ProofRecord) error {
	return errors.New("disk full")
}

func photoWithResource(campaignID, fileName string) (models.PhotoDescriptor, *stubResource) {
	res := &stubResource{}
	return models.NewPhotoDescriptor(campaignID, fileName, time.Time{}, res), res
}

func newTestManager(store repository.ProofStore) (*Manager, *analysis.Store) {
	analyses := analysis.NewStore()
	return NewManager(store, analyses, nil, 640, 70), analyses
}

func TestConfirmAndSaveFirstSave(t *testing.T) {
	store := repository.NewMemoryProofStore()
	mgr, analyses := newTestManager(store)

	p1, r1 := photoWithResource("cmp-1", "LA-001_N_01.jpg")
	p2, r2 := photoWithResource("cmp-1", "LA-001_E_02.jpg")

	analyses.Put(models.PhotoAnalysis{
		PhotoID:    p1.ID,
		CampaignID: "cmp-1",
		Text:       "ACME SALE NOW",
		Match:      models.MatchResult{Score: 100, Matched: []string{"acme", "sale"}},
		Flags:      models.FlagSet{models.FlagVerified},
	})

	record, report, err := mgr.ConfirmAndSave(context.Background(), models.CampaignGroup{
		CampaignID: "cmp-1",
		Photos:     []models.PhotoDescriptor{p1, p2},
	})
	if err != nil {
		t.Fatalf("ConfirmAndSave: %v", err)
	}
	if report.Added != 2 || report.Existing != 0 || report.Total != 2 {
		t.Errorf("report = %+v, want added=2 existing=0 total=2", report)
	}
	if len(record.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(record.Entries))
	}

	// Analyzed photo carries its score; the other defaults to empty.
	analyzed := record.Entry(p1.ID)
	if analyzed == nil || analyzed.Score != 100 || !analyzed.Flags.Has(models.FlagVerified) {
		t.Errorf("analyzed entry = %+v", analyzed)
	}
	bare := record.Entry(p2.ID)
	if bare == nil || bare.Score != 0 || len(bare.Flags) != 0 {
		t.Errorf("bare entry = %+v", bare)
	}
	if record.Summary.Total != 2 || record.Summary.Verified != 1 {
		t.Errorf("summary = %+v", record.Summary)
	}

	// Write succeeded, so resources are released and analyses cleared.
	if r1.released != 1 || r2.released != 1 {
		t.Errorf("releases = %d, %d; want 1, 1", r1.released, r2.released)
	}
	if _, ok := analyses.Get(p1.ID); ok {
		t.Error("analysis should be deleted after save")
	}

	stored, err := store.Get(context.Background(), "cmp-1")
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if len(stored.Entries) != 2 {
		t.Errorf("stored entries = %d, want 2", len(stored.Entries))
	}
}

func TestConfirmAndSaveMergesWithExisting(t *testing.T) {
	store := repository.NewMemoryProofStore()
	mgr, _ := newTestManager(store)
	ctx := context.Background()

	// First wave: three photos saved.
	var first []models.PhotoDescriptor
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p, _ := photoWithResource("cmp-1", name)
		first = append(first, p)
	}
	if _, _, err := mgr.ConfirmAndSave(ctx, models.CampaignGroup{CampaignID: "cmp-1", Photos: first}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Second wave re-enumerates one of them plus a new photo.
	overlap, _ := photoWithResource("cmp-1", "c.jpg")
	fresh, _ := photoWithResource("cmp-1", "d.jpg")
	record, report, err := mgr.ConfirmAndSave(ctx, models.CampaignGroup{
		CampaignID: "cmp-1",
		Photos:     []models.PhotoDescriptor{overlap, fresh},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if report.Added != 1 || report.Existing != 1 || report.Total != 4 {
		t.Errorf("report = %+v, want added=1 existing=1 total=4", report)
	}
	if len(record.Entries) != 4 {
		t.Errorf("got %d entries, want 4", len(record.Entries))
	}
	if record.Summary.Total != 4 {
		t.Errorf("summary total = %d, want 4", record.Summary.Total)
	}
}

func TestConfirmAndSaveExistingEntryWins(t *testing.T) {
	store := repository.NewMemoryProofStore()
	mgr, analyses := newTestManager(store)
	ctx := context.Background()

	p, _ := photoWithResource("cmp-1", "a.jpg")
	analyses.Put(models.PhotoAnalysis{
		PhotoID: p.ID, CampaignID: "cmp-1", Text: "ACME",
		Match: models.MatchResult{Score: 80},
	})
	if _, _, err := mgr.ConfirmAndSave(ctx, models.CampaignGroup{CampaignID: "cmp-1", Photos: []models.PhotoDescriptor{p}}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Re-analysis of the same photo yields a different score; on re-save the
	// persisted entry must not change.
	again, _ := photoWithResource("cmp-1", "a.jpg")
	analyses.Put(models.PhotoAnalysis{
		PhotoID: again.ID, CampaignID: "cmp-1", Text: "ACME",
		Match: models.MatchResult{Score: 20},
	})
	record, report, err := mgr.ConfirmAndSave(ctx, models.CampaignGroup{CampaignID: "cmp-1", Photos: []models.PhotoDescriptor{again}})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if report.Added != 0 || report.Existing != 1 {
		t.Errorf("report = %+v, want added=0 existing=1", report)
	}
	if entry := record.Entry(p.ID); entry == nil || entry.Score != 80 {
		t.Errorf("entry = %+v, want persisted score 80", entry)
	}
}

func TestConfirmAndSaveToleratesReleaseFailure(t *testing.T) {
	store := repository.NewMemoryProofStore()
	mgr, _ := newTestManager(store)

	res := &faultyReleaseResource{}
	photo := models.NewPhotoDescriptor("cmp-1", "a.jpg", time.Time{}, res)

	record, report, err := mgr.ConfirmAndSave(context.Background(), models.CampaignGroup{
		CampaignID: "cmp-1",
		Photos:     []models.PhotoDescriptor{photo},
	})
	if err != nil {
		t.Fatalf("ConfirmAndSave: %v", err)
	}
	if report.Added != 1 || len(record.Entries) != 1 {
		t.Errorf("report = %+v, entries = %d", report, len(record.Entries))
	}
	if res.released != 1 {
		t.Errorf("release attempts = %d, want 1", res.released)
	}

	stored, err := store.Get(context.Background(), "cmp-1")
	if err != nil || len(stored.Entries) != 1 {
		t.Errorf("stored record = %+v, err %v", stored, err)
	}
}

func TestConfirmAndSaveWriteFailureLeavesStateIntact(t *testing.T) {
	store := &failingStore{repository.NewMemoryProofStore()}
	mgr, analyses := newTestManager(store)

	p, res := photoWithResource("cmp-1", "a.jpg")
	analyses.Put(models.PhotoAnalysis{PhotoID: p.ID, CampaignID: "cmp-1", Text: "ACME"})

	_, _, err := mgr.ConfirmAndSave(context.Background(), models.CampaignGroup{
		CampaignID: "cmp-1",
		Photos:     []models.PhotoDescriptor{p},
	})
	if err == nil {
		t.Fatal("expected error from failing store")
	}

	// Nothing released, analysis intact: a retry sees the same inputs.
	if res.released != 0 {
		t.Errorf("resource released %d times on failed save", res.released)
	}
	if _, ok := analyses.Get(p.ID); !ok {
		t.Error("analysis dropped on failed save")
	}
}
