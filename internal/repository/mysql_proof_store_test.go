package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

func sampleRecord(campaignID string) models.ProofRecord {
	entries := []models.PhotoProof{
		{
			PhotoID:  campaignID + "/la-001_n_01.jpg",
			FileName: "LA-001_N_01.jpg",
			Score:    100,
			Flags:    models.FlagSet{models.FlagVerified},
			Matched:  []string{"acme", "sale"},
		},
	}
	return models.ProofRecord{
		CampaignID:  campaignID,
		Entries:     entries,
		Summary:     models.Summarize(entries),
		ConfirmedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMySQLProofStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewMySQLProofStoreWithDB(db)

	want := sampleRecord("cmp-1")
	body, _ := json.Marshal(want)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM proof_records WHERE campaign_id = ?")).
		WithArgs("cmp-1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(body))

	got, err := store.Get(context.Background(), "cmp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CampaignID != want.CampaignID || len(got.Entries) != 1 {
		t.Errorf("got record %+v, want %+v", got, want)
	}
	if got.Entries[0].PhotoID != want.Entries[0].PhotoID {
		t.Errorf("entry photo id = %q, want %q", got.Entries[0].PhotoID, want.Entries[0].PhotoID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQLProofStoreGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewMySQLProofStoreWithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM proof_records WHERE campaign_id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	_, err = store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestMySQLProofStorePut(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewMySQLProofStoreWithDB(db)

	record := sampleRecord("cmp-2")
	body, _ := json.Marshal(record)
	mock.ExpectExec("INSERT INTO proof_records").
		WithArgs("cmp-2", body).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), record); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQLProofStoreGetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewMySQLProofStoreWithDB(db)

	a, _ := json.Marshal(sampleRecord("cmp-a"))
	b, _ := json.Marshal(sampleRecord("cmp-b"))
	mock.ExpectQuery("SELECT body FROM proof_records ORDER BY campaign_id").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(a).AddRow(b))

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].CampaignID != "cmp-a" || records[1].CampaignID != "cmp-b" {
		t.Errorf("unexpected order: %q, %q", records[0].CampaignID, records[1].CampaignID)
	}
}

func TestMySQLProofStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewMySQLProofStoreWithDB(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM proof_records WHERE campaign_id = ?")).
		WithArgs("cmp-3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "cmp-3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
