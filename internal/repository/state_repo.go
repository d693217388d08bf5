package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"studyquest/internal/models"
)

// Document keys for the three synced aggregates plus the two ephemeral
// session-resume entries, which never leave the local store.
const (
	KeyStats            = "stats"
	KeyPrizes           = "prizes"
	KeyWorksheets       = "worksheets"
	KeySessionProgress  = "session_progress"
	KeyCurrentQuestions = "current_questions"
)

// StateRepository layers typed aggregate access on top of the raw document
// store.
type StateRepository struct {
	docs *DocumentRepository
}

// NewStateRepository creates a new state repository
func NewStateRepository(docs *DocumentRepository) *StateRepository {
	return &StateRepository{docs: docs}
}

// LoadStats returns the stored Stats aggregate, or the documented zero-value
// aggregate when the store has no entry.
func (r *StateRepository) LoadStats() (*models.Stats, error) {
	body, err := r.docs.Get(KeyStats)
	if errors.Is(err, ErrNotFound) {
		return models.NewStats(), nil
	}
	if err != nil {
		return nil, err
	}

	stats := models.NewStats()
	if err := json.Unmarshal(body, stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats document: %w", err)
	}
	return stats, nil
}

// LoadPrizes returns the stored prize list, empty when absent.
func (r *StateRepository) LoadPrizes() ([]models.Prize, error) {
	body, err := r.docs.Get(KeyPrizes)
	if errors.Is(err, ErrNotFound) {
		return []models.Prize{}, nil
	}
	if err != nil {
		return nil, err
	}

	var prizes []models.Prize
	if err := json.Unmarshal(body, &prizes); err != nil {
		return nil, fmt.Errorf("failed to decode prizes document: %w", err)
	}
	return prizes, nil
}

// LoadWorksheets returns the stored worksheet list, empty when absent.
func (r *StateRepository) LoadWorksheets() ([]models.Worksheet, error) {
	body, err := r.docs.Get(KeyWorksheets)
	if errors.Is(err, ErrNotFound) {
		return []models.Worksheet{}, nil
	}
	if err != nil {
		return nil, err
	}

	var worksheets []models.Worksheet
	if err := json.Unmarshal(body, &worksheets); err != nil {
		return nil, fmt.Errorf("failed to decode worksheets document: %w", err)
	}
	return worksheets, nil
}

// SaveAggregates persists all three synced aggregates in one transaction.
func (r *StateRepository) SaveAggregates(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) error {
	statsBody, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	prizesBody, err := json.Marshal(prizes)
	if err != nil {
		return err
	}
	worksheetsBody, err := json.Marshal(worksheets)
	if err != nil {
		return err
	}

	return r.docs.PutMany(map[string][]byte{
		KeyStats:      statsBody,
		KeyPrizes:     prizesBody,
		KeyWorksheets: worksheetsBody,
	})
}

// SaveSessionProgress mirrors the in-flight session snapshot.
func (r *StateRepository) SaveSessionProgress(progress models.SessionProgress) error {
	body, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return r.docs.Put(KeySessionProgress, body)
}

// LoadSessionProgress returns the mirrored snapshot, or nil when no session
// is suspended.
func (r *StateRepository) LoadSessionProgress() (*models.SessionProgress, error) {
	body, err := r.docs.Get(KeySessionProgress)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var progress models.SessionProgress
	if err := json.Unmarshal(body, &progress); err != nil {
		return nil, fmt.Errorf("failed to decode session progress: %w", err)
	}
	return &progress, nil
}

// SaveCurrentQuestions stores the generated question set for the in-flight
// session.
func (r *StateRepository) SaveCurrentQuestions(questions []models.Question) error {
	body, err := models.EncodeQuestions(questions)
	if err != nil {
		return err
	}
	return r.docs.Put(KeyCurrentQuestions, body)
}

// LoadCurrentQuestions returns the stored question set, or nil when absent.
func (r *StateRepository) LoadCurrentQuestions() ([]models.Question, error) {
	body, err := r.docs.Get(KeyCurrentQuestions)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.DecodeQuestions(body)
}

// ClearSession removes both ephemeral session entries.
func (r *StateRepository) ClearSession() error {
	if err := r.docs.Delete(KeySessionProgress); err != nil {
		return err
	}
	return r.docs.Delete(KeyCurrentQuestions)
}
