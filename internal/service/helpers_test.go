package service

import (
	"path/filepath"
	"testing"
	"time"

	"studyquest/internal/database"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/sync"
)

func newTestRepo(t *testing.T) *repository.StateRepository {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			doc_key TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed to create documents table: %v", err)
	}

	return repository.NewStateRepository(repository.NewDocumentRepository(db))
}

// newTestHousehold builds a hydrated local-only household.
func newTestHousehold(t *testing.T) (*Household, *repository.StateRepository) {
	t.Helper()

	repo := newTestRepo(t)
	syncer := sync.New(repo, nil, time.Millisecond)
	household := NewHousehold(repo, syncer)
	if err := household.Hydrate(t.Context()); err != nil {
		t.Fatalf("failed to hydrate household: %v", err)
	}
	return household, repo
}

func mcQuestion(id, prompt, answer string, options []string, complexity int) models.Question {
	return models.MultipleChoiceQuestion{
		QuestionBase: models.QuestionBase{
			ID:            id,
			Prompt:        prompt,
			CorrectAnswer: answer,
			Complexity:    complexity,
		},
		Options: options,
	}
}

func textQuestion(id, prompt, answer string, complexity int) models.Question {
	return models.TextQuestion{
		QuestionBase: models.QuestionBase{
			ID:            id,
			Prompt:        prompt,
			CorrectAnswer: answer,
			Complexity:    complexity,
		},
	}
}
