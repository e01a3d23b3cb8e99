package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

func TestMemoryProofStoreRoundTrip(t *testing.T) {
	store := NewMemoryProofStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "cmp-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	record := sampleRecord("cmp-1")
	if err := store.Put(ctx, record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "cmp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CampaignID != "cmp-1" || len(got.Entries) != 1 {
		t.Errorf("unexpected record: %+v", got)
	}

	if err := store.Delete(ctx, "cmp-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "cmp-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
}

func TestMemoryProofStoreGetAllSorted(t *testing.T) {
	store := NewMemoryProofStore()
	ctx := context.Background()
	for _, id := range []string{"cmp-c", "cmp-a", "cmp-b"} {
		if err := store.Put(ctx, sampleRecord(id)); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	records, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	want := []string{"cmp-a", "cmp-b", "cmp-c"}
	for i, id := range want {
		if records[i].CampaignID != id {
			t.Errorf("records[%d] = %q, want %q", i, records[i].CampaignID, id)
		}
	}
}

func TestMemoryTagStoreDefaults(t *testing.T) {
	store := NewMemoryTagStore()
	if tags := store.Get("unknown"); len(tags.Include) != 0 || len(tags.Exclude) != 0 {
		t.Errorf("expected zero tag set for unknown campaign, got %+v", tags)
	}
	store.Put("cmp-1", models.TagSet{Include: []string{"acme"}})
	if tags := store.Get("cmp-1"); len(tags.Include) != 1 || tags.Include[0] != "acme" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestMemoryTrackerSource(t *testing.T) {
	src := NewMemoryTrackerSource()
	if _, ok := src.Get("cmp-1"); ok {
		t.Fatal("expected miss for unknown campaign")
	}
	src.Put(models.TrackerInfo{CampaignID: "cmp-1", Market: "los-angeles", ExpectedQty: 8})
	tr, ok := src.Get("cmp-1")
	if !ok || tr.Market != "los-angeles" {
		t.Errorf("unexpected tracker: %+v ok=%v", tr, ok)
	}
	if all := src.All(); len(all) != 1 {
		t.Errorf("All() = %d entries, want 1", len(all))
	}
}
