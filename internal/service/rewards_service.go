package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"studyquest/internal/models"
)

var (
	// ErrInsufficientCredits rejects a purchase the learner cannot afford.
	ErrInsufficientCredits = errors.New("not enough credits")

	// ErrPrizeUnavailable rejects a purchase of a missing or already
	// unlocked prize.
	ErrPrizeUnavailable = errors.New("prize unavailable")
)

// sessionMinutes is the fixed study time credited per completed question
// set, regardless of wall-clock time.
const sessionMinutes = 10

// RewardsService folds session completions into the Stats aggregate and
// manages the prize lifecycle. Besides manual import it is the only writer
// of Stats.
type RewardsService struct {
	household *Household
	now       func() time.Time
}

// NewRewardsService creates a new rewards service
func NewRewardsService(household *Household) *RewardsService {
	return &RewardsService{household: household, now: time.Now}
}

// ApplyCompletion credits a finished session. Credits double when the
// completion lands on a configured double-credit weekday. worksheetID may be
// empty for ad-hoc sessions.
func (s *RewardsService) ApplyCompletion(record models.CompletionRecord, subject models.Subject, worksheetID string) error {
	return s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		multiplier := 1.0
		if stats.IsDoubleCreditDay(int(s.now().Weekday())) {
			multiplier = 2.0
		}

		stats.Credits += record.TotalCredits * multiplier
		stats.TotalQuestions += record.ItemCount
		stats.CorrectAnswers += record.CorrectCount
		stats.RecomputeAccuracy()
		stats.DailyMinutes += sessionMinutes

		if subject.MetricsBucket() {
			metrics := stats.SubjectStats[subject]
			metrics.TotalMinutes += sessionMinutes
			metrics.TotalQuestions += record.ItemCount
			metrics.CorrectAnswers += record.CorrectCount
			stats.SubjectStats[subject] = metrics
		}

		if worksheetID != "" {
			stats.PushRecentWorksheet(worksheetID)
		}

		return prizes, worksheets, nil
	})
}

// Purchase redeems credits for a prize. Deduction, unlock and the history
// entry happen as one atomic step; a rejected purchase changes nothing.
func (s *RewardsService) Purchase(prizeID string) (*models.WonPrize, error) {
	var won *models.WonPrize

	err := s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		idx := -1
		for i, p := range prizes {
			if p.ID == prizeID {
				idx = i
				break
			}
		}
		if idx == -1 || prizes[idx].Unlocked {
			return nil, nil, ErrPrizeUnavailable
		}
		if stats.Credits < prizes[idx].Cost {
			return nil, nil, ErrInsufficientCredits
		}

		stats.Credits -= prizes[idx].Cost
		prizes[idx].Unlocked = true

		entry := models.WonPrize{
			ID:       prizes[idx].ID,
			Name:     prizes[idx].Name,
			Cost:     prizes[idx].Cost,
			Image:    prizes[idx].Image,
			Unlocked: true,
			DateWon:  s.now().Format("2006-01-02"),
		}
		stats.WonHistory = append([]models.WonPrize{entry}, stats.WonHistory...)
		won = &entry

		return prizes, worksheets, nil
	})
	if err != nil {
		return nil, err
	}
	return won, nil
}

// AddPrize registers a parent-configured prize.
func (s *RewardsService) AddPrize(name string, cost float64, image string) (*models.Prize, error) {
	prize := models.Prize{
		ID:    uuid.New().String(),
		Name:  name,
		Cost:  cost,
		Image: image,
	}

	err := s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		return append(prizes, prize), worksheets, nil
	})
	if err != nil {
		return nil, err
	}
	return &prize, nil
}

// DeletePrize removes a prize from the configured set. Won history keeps its
// snapshot regardless.
func (s *RewardsService) DeletePrize(prizeID string) error {
	return s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		kept := prizes[:0]
		for _, p := range prizes {
			if p.ID != prizeID {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(prizes) {
			return nil, nil, ErrPrizeUnavailable
		}
		return kept, worksheets, nil
	})
}

// SetDoubleCreditDays replaces the configured double-credit weekdays.
func (s *RewardsService) SetDoubleCreditDays(days []int) error {
	for _, d := range days {
		if d < 0 || d > 6 {
			return errors.New("weekday out of range")
		}
	}
	return s.household.mutate(func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error) {
		stats.DoubleCreditDays = append([]int(nil), days...)
		return prizes, worksheets, nil
	})
}
