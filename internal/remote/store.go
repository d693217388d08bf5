package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"studyquest/internal/models"
)

var (
	// ErrNoRecord is returned by Fetch when the household has no remote row.
	ErrNoRecord = errors.New("no remote record for household")

	// ErrHouseholdRowMissing is returned by Write when the update matched no
	// row. The remote row must be provisioned before writes can succeed.
	ErrHouseholdRowMissing = errors.New("household row does not exist")

	// ErrRemoteUnavailable wraps connectivity failures against the mirror.
	// Callers degrade to local-only mode; it never blocks local writes.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// Documents is the whole aggregate set exchanged with the remote store.
// Sync is last-write-wins at this granularity; there is no field-level merge.
type Documents struct {
	Stats      *models.Stats
	Prizes     []models.Prize
	Worksheets []models.Worksheet
}

// Store is the remote multi-device mirror: one logical row per household.
type Store interface {
	// Fetch returns the household's documents, or ErrNoRecord.
	Fetch(ctx context.Context) (*Documents, error)

	// Write replaces the household's documents wholesale. The row must
	// already exist; Write never inserts.
	Write(ctx context.Context, docs Documents) error
}

// PostgresStore backs Store with a single household_state row in Postgres.
type PostgresStore struct {
	db          *sql.DB
	householdID string
}

// NewPostgresStore opens the remote database connection.
func NewPostgresStore(databaseURL, householdID string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db, householdID: householdID}, nil
}

// Close closes the remote database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Fetch reads the household row.
func (s *PostgresStore) Fetch(ctx context.Context) (*Documents, error) {
	query := `
		SELECT stats, prizes, worksheets
		FROM household_state
		WHERE household_id = $1
	`

	var statsBody, prizesBody, worksheetsBody []byte
	err := s.db.QueryRowContext(ctx, query, s.householdID).Scan(&statsBody, &prizesBody, &worksheetsBody)
	if err == sql.ErrNoRows {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrRemoteUnavailable, err)
	}

	docs := &Documents{Stats: models.NewStats()}
	if err := json.Unmarshal(statsBody, docs.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode remote stats: %w", err)
	}
	if err := json.Unmarshal(prizesBody, &docs.Prizes); err != nil {
		return nil, fmt.Errorf("failed to decode remote prizes: %w", err)
	}
	if err := json.Unmarshal(worksheetsBody, &docs.Worksheets); err != nil {
		return nil, fmt.Errorf("failed to decode remote worksheets: %w", err)
	}
	return docs, nil
}

// Write updates the household row with the full aggregate set.
func (s *PostgresStore) Write(ctx context.Context, docs Documents) error {
	statsBody, err := json.Marshal(docs.Stats)
	if err != nil {
		return err
	}
	prizesBody, err := json.Marshal(docs.Prizes)
	if err != nil {
		return err
	}
	worksheetsBody, err := json.Marshal(docs.Worksheets)
	if err != nil {
		return err
	}

	query := `
		UPDATE household_state
		SET stats = $1, prizes = $2, worksheets = $3, updated_at = CURRENT_TIMESTAMP
		WHERE household_id = $4
	`

	result, err := s.db.ExecContext(ctx, query, statsBody, prizesBody, worksheetsBody, s.householdID)
	if err != nil {
		return fmt.Errorf("%w: write: %v", ErrRemoteUnavailable, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrHouseholdRowMissing
	}
	return nil
}
