package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"studyquest/internal/database"
)

// ErrNotFound is returned when a document key has no stored entry.
var ErrNotFound = errors.New("document not found")

// DocumentRepository reads and writes whole string-keyed JSON documents in
// the local durable store.
type DocumentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get returns the stored document body for a key.
func (r *DocumentRepository) Get(key string) ([]byte, error) {
	var body string
	err := r.db.QueryRow("SELECT body FROM documents WHERE doc_key = ?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Put stores a document body under a key, replacing any previous value.
func (r *DocumentRepository) Put(key string, body []byte) error {
	_, err := r.db.Exec(r.db.Dialect.UpsertDocumentQuery(), key, string(body))
	return err
}

// PutMany stores several documents in one transaction so a multi-aggregate
// save is all-or-nothing.
func (r *DocumentRepository) PutMany(docs map[string][]byte) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := r.db.Dialect.UpsertDocumentQuery()
	for key, body := range docs {
		if _, err := tx.Exec(query, key, string(body)); err != nil {
			return fmt.Errorf("failed to store document %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Delete removes a document. Deleting a missing key is not an error.
func (r *DocumentRepository) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM documents WHERE doc_key = ?", key)
	return err
}
