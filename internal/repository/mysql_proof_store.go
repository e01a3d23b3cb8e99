package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/models"
)

// MySQLProofStore persists proof records in a MySQL table, one row per
// campaign with the record body serialized as JSON. Upserts go through
// ON DUPLICATE KEY UPDATE so a confirm is a single round trip.
type MySQLProofStore struct {
	db *sql.DB
}

// NewMySQLProofStore opens a connection pool against the given DSN and
// ensures the backing table exists.
func NewMySQLProofStore(dsn string) (*MySQLProofStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	store := &MySQLProofStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewMySQLProofStoreWithDB wraps an existing connection pool. The caller
// owns the pool's lifecycle; used by tests.
func NewMySQLProofStoreWithDB(db *sql.DB) *MySQLProofStore {
	return &MySQLProofStore{db: db}
}

func (s *MySQLProofStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS proof_records (
			campaign_id VARCHAR(128) NOT NULL PRIMARY KEY,
			body MEDIUMTEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("ensure proof_records schema: %w", err)
	}
	return nil
}

// GetAll returns every stored proof record ordered by campaign identity.
func (s *MySQLProofStore) GetAll(ctx context.Context) ([]models.ProofRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT body FROM proof_records ORDER BY campaign_id")
	if err != nil {
		return nil, fmt.Errorf("query proof records: %w", err)
	}
	defer rows.Close()

	var records []models.ProofRecord
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan proof record: %w", err)
		}
		var record models.ProofRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("decode proof record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proof records: %w", err)
	}
	return records, nil
}

// Get returns the record for a campaign, or ErrRecordNotFound.
func (s *MySQLProofStore) Get(ctx context.Context, campaignID string) (*models.ProofRecord, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM proof_records WHERE campaign_id = ?", campaignID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query proof record %s: %w", campaignID, err)
	}
	var record models.ProofRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode proof record %s: %w", campaignID, err)
	}
	return &record, nil
}

// Put upserts a record by campaign identity.
func (s *MySQLProofStore) Put(ctx context.Context, record models.ProofRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode proof record %s: %w", record.CampaignID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proof_records (campaign_id, body) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE body = VALUES(body)`,
		record.CampaignID, body)
	if err != nil {
		return fmt.Errorf("upsert proof record %s: %w", record.CampaignID, err)
	}
	return nil
}

// Delete removes a campaign's record. Deleting an absent record is a no-op.
func (s *MySQLProofStore) Delete(ctx context.Context, campaignID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM proof_records WHERE campaign_id = ?", campaignID)
	if err != nil {
		return fmt.Errorf("delete proof record %s: %w", campaignID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLProofStore) Close() error {
	return s.db.Close()
}
