package models

import "math"

// SubjectMetrics accumulates per-subject study totals. All fields are
// monotonically non-decreasing for the lifetime of the aggregate.
type SubjectMetrics struct {
	TotalMinutes   int `json:"total_minutes"`
	TotalQuestions int `json:"total_questions"`
	CorrectAnswers int `json:"correct_answers"`
}

// WonPrize is a snapshot of a prize at the moment it was purchased.
// Entries are immutable once appended to the history.
type WonPrize struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Image    string  `json:"image"`
	Unlocked bool    `json:"unlocked"`
	DateWon  string  `json:"date_won"`
}

// Stats is the household-wide progress aggregate. There is exactly one per
// household. Accuracy is always derived from TotalQuestions/CorrectAnswers,
// never tracked independently.
type Stats struct {
	Credits            float64                    `json:"credits"`
	TotalQuestions     int                        `json:"total_questions"`
	CorrectAnswers     int                        `json:"correct_answers"`
	Accuracy           int                        `json:"accuracy"`
	DailyMinutes       int                        `json:"daily_minutes"`
	WonHistory         []WonPrize                 `json:"won_history"`
	SubjectStats       map[Subject]SubjectMetrics `json:"subject_stats"`
	RecentWorksheetIDs []string                   `json:"recent_worksheet_ids"`
	DoubleCreditDays   []int                      `json:"double_credit_days"`
}

// NewStats returns the documented zero-value aggregate: empty history, a
// metrics entry for every real subject, and no double-credit days.
func NewStats() *Stats {
	subjectStats := make(map[Subject]SubjectMetrics, len(MetricSubjects))
	for _, s := range MetricSubjects {
		subjectStats[s] = SubjectMetrics{}
	}
	return &Stats{
		WonHistory:         []WonPrize{},
		SubjectStats:       subjectStats,
		RecentWorksheetIDs: []string{},
		DoubleCreditDays:   []int{},
	}
}

// RecomputeAccuracy refreshes the derived accuracy percentage.
func (s *Stats) RecomputeAccuracy() {
	if s.TotalQuestions == 0 {
		s.Accuracy = 0
		return
	}
	s.Accuracy = int(math.Round(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100))
}

// IsDoubleCreditDay reports whether the given weekday (0=Sunday .. 6=Saturday)
// earns doubled credits.
func (s *Stats) IsDoubleCreditDay(weekday int) bool {
	for _, d := range s.DoubleCreditDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// PushRecentWorksheet records a completed worksheet id, most recent first,
// capped at two entries. Duplicates are allowed so a repeat completion shifts
// the order.
func (s *Stats) PushRecentWorksheet(id string) {
	recent := append([]string{id}, s.RecentWorksheetIDs...)
	if len(recent) > 2 {
		recent = recent[:2]
	}
	s.RecentWorksheetIDs = recent
}
