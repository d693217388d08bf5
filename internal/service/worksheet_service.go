package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"studyquest/internal/genai"
	"studyquest/internal/models"
)

// ErrWorksheetNotFound is returned when a worksheet id has no entry.
var ErrWorksheetNotFound = errors.New("worksheet not found")

// WorksheetListing is a worksheet plus its recency-lock state. A worksheet
// completed within the last two sessions is not immediately replayable.
type WorksheetListing struct {
	models.Worksheet
	Locked bool `json:"locked"`
}

// WorksheetService manages the parent-imported worksheet library and drives
// question generation for it.
type WorksheetService struct {
	household *Household
	generator genai.Generator
}

// NewWorksheetService creates a new worksheet service
func NewWorksheetService(household *Household, generator genai.Generator) *WorksheetService {
	return &WorksheetService{household: household, generator: generator}
}

// Add imports a worksheet from photographed pages.
func (s *WorksheetService) Add(subject models.Subject, name string, images []string, date string) (*models.Worksheet, error) {
	if !subject.MetricsBucket() {
		return nil, errors.New("worksheet subject must be a real subject")
	}
	if len(images) == 0 {
		return nil, errors.New("worksheet needs at least one page image")
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	worksheet := models.Worksheet{
		ID:      uuid.New().String(),
		Subject: subject,
		Images:  images,
		Name:    name,
		Date:    date,
	}

	err := s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		return prizes, append(worksheets, worksheet), nil
	})
	if err != nil {
		return nil, err
	}
	return &worksheet, nil
}

// Delete removes a worksheet from the library.
func (s *WorksheetService) Delete(id string) error {
	return s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		kept := worksheets[:0]
		for _, w := range worksheets {
			if w.ID != id {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(worksheets) {
			return nil, nil, ErrWorksheetNotFound
		}
		return prizes, kept, nil
	})
}

// Get returns a worksheet by id.
func (s *WorksheetService) Get(id string) (*models.Worksheet, error) {
	var found *models.Worksheet
	s.household.view(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) {
		for _, w := range worksheets {
			if w.ID == id {
				copied := w
				found = &copied
				return
			}
		}
	})
	if found == nil {
		return nil, ErrWorksheetNotFound
	}
	return found, nil
}

// List returns worksheets with their recency-lock state, optionally filtered
// by subject. SubjectAll (or empty) matches everything.
func (s *WorksheetService) List(filter models.Subject) []WorksheetListing {
	var listings []WorksheetListing
	s.household.view(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) {
		for _, w := range worksheets {
			if filter != "" && filter != models.SubjectAll && w.Subject != filter {
				continue
			}
			locked := false
			for _, recent := range stats.RecentWorksheetIDs {
				if recent == w.ID {
					locked = true
					break
				}
			}
			listings = append(listings, WorksheetListing{Worksheet: w, Locked: locked})
		}
	})
	return listings
}

// Generate asks the external service for a question set built from the
// worksheet's pages. A locked worksheet cannot be generated for; all
// generation failures surface as genai.ErrGenerationFailed, which callers
// present as a retry prompt.
func (s *WorksheetService) Generate(ctx context.Context, worksheetID string) (*models.Worksheet, []models.Question, error) {
	worksheet, err := s.Get(worksheetID)
	if err != nil {
		return nil, nil, err
	}

	for _, recent := range s.household.StatsSnapshot().RecentWorksheetIDs {
		if recent == worksheetID {
			return nil, nil, errors.New("worksheet was completed recently, pick another")
		}
	}

	questions, err := s.generator.GenerateQuestions(ctx, worksheet.Images, worksheet.Subject)
	if err != nil {
		return nil, nil, err
	}
	return worksheet, questions, nil
}
