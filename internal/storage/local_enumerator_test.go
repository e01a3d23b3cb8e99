package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePhoto(t *testing.T, root, campaignID, name string) string {
	t.Helper()
	dir := filepath.Join(root, campaignID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLocalEnumerator(t *testing.T) {
	root := t.TempDir()
	writePhoto(t, root, "cmp-1", "LA-001_N_01.jpg")
	writePhoto(t, root, "cmp-1", "extra.png")
	writePhoto(t, root, "cmp-2", "site.jpeg")
	writePhoto(t, root, "cmp-2", "notes.txt") // not an image

	enum, err := NewLocalEnumerator(root)
	if err != nil {
		t.Fatalf("NewLocalEnumerator: %v", err)
	}

	all, err := enum.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d photos, want 3", len(all))
	}

	cmp1, err := enum.EnumerateCampaign(context.Background(), "cmp-1")
	if err != nil {
		t.Fatalf("EnumerateCampaign: %v", err)
	}
	if len(cmp1) != 2 {
		t.Fatalf("got %d cmp-1 photos, want 2", len(cmp1))
	}
	for _, p := range cmp1 {
		if p.CampaignID != "cmp-1" {
			t.Errorf("photo %s has campaign %q", p.ID, p.CampaignID)
		}
	}

	missing, err := enum.EnumerateCampaign(context.Background(), "no-such-campaign")
	if err != nil {
		t.Fatalf("EnumerateCampaign missing: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected empty slice for unknown campaign, got %d", len(missing))
	}
}

func TestLocalEnumeratorStructuralMeta(t *testing.T) {
	root := t.TempDir()
	writePhoto(t, root, "cmp-1", "LAX-0412_NE_03.jpg")

	enum, err := NewLocalEnumerator(root)
	if err != nil {
		t.Fatalf("NewLocalEnumerator: %v", err)
	}
	photos, err := enum.EnumerateCampaign(context.Background(), "cmp-1")
	if err != nil || len(photos) != 1 {
		t.Fatalf("enumerate: %v (%d photos)", err, len(photos))
	}
	meta := photos[0].Structural
	if meta.SiteID != "LAX-0412" || meta.Direction != "NE" || meta.Sequence != 3 {
		t.Errorf("unexpected structural meta: %+v", meta)
	}
}

func TestFileResourceLifecycle(t *testing.T) {
	root := t.TempDir()
	path := writePhoto(t, root, "cmp-1", "a.jpg")

	enum, err := NewLocalEnumerator(root)
	if err != nil {
		t.Fatalf("NewLocalEnumerator: %v", err)
	}
	photos, err := enum.EnumerateCampaign(context.Background(), "cmp-1")
	if err != nil || len(photos) != 1 {
		t.Fatalf("enumerate: %v (%d photos)", err, len(photos))
	}
	res := photos[0].Resource

	data, err := res.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected bytes: %q", data)
	}

	if err := res.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected photo removed after release, stat err = %v", err)
	}

	// Release is idempotent.
	if err := res.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}

	if _, err := res.Fetch(context.Background()); err == nil {
		t.Error("expected error fetching released resource")
	}
}
