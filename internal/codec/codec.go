// Package codec serializes the three household aggregates into a single
// transport-safe text blob for manual backup, restore and cross-install
// migration. The encoding is base64 over UTF-8 JSON and is reversible
// byte-for-byte. The format carries no version tag; that gap is documented
// rather than papered over.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"studyquest/internal/models"
)

// ErrInvalidImportPayload is returned when a blob cannot be decoded or
// parsed. The error is raised before any aggregate mutation.
var ErrInvalidImportPayload = errors.New("invalid import payload")

// StatsPayload is the exported subset of the Stats aggregate. Derived and
// device-local fields (accuracy, daily minutes, recent worksheets) are not
// part of a backup.
type StatsPayload struct {
	Credits          float64                                  `json:"credits"`
	WonHistory       []models.WonPrize                        `json:"won_history,omitempty"`
	SubjectStats     map[models.Subject]models.SubjectMetrics `json:"subject_stats,omitempty"`
	DoubleCreditDays []int                                    `json:"double_credit_days,omitempty"`
}

// Payload is the decoded form of a backup blob. Nil sections were absent
// from the blob and must leave the current aggregate untouched.
type Payload struct {
	Prizes     []models.Prize     `json:"prizes,omitempty"`
	Worksheets []models.Worksheet `json:"worksheets,omitempty"`
	Stats      *StatsPayload      `json:"stats,omitempty"`
}

// ExportBlob serializes the aggregates into a single-line encoded string.
func ExportBlob(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) (string, error) {
	payload := Payload{
		Prizes:     prizes,
		Worksheets: worksheets,
	}
	if stats != nil {
		payload.Stats = &StatsPayload{
			Credits:          stats.Credits,
			WonHistory:       stats.WonHistory,
			SubjectStats:     stats.SubjectStats,
			DoubleCreditDays: stats.DoubleCreditDays,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode export payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

// ImportBlob reverses ExportBlob. A malformed encoding, truncated payload or
// non-JSON content fails with ErrInvalidImportPayload.
func ImportBlob(blob string) (*Payload, error) {
	body, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
	}
	return &payload, nil
}

// MergeStats overlays an imported stats section onto the documented
// zero-value aggregate, field by field. This is the deliberate exception to
// the codec's wholesale-replace contract: an older backup that predates a
// newer field must not null it out. Credits default to 0 when absent.
func MergeStats(payload *StatsPayload) *models.Stats {
	stats := models.NewStats()
	if payload == nil {
		return stats
	}

	stats.Credits = payload.Credits
	if payload.WonHistory != nil {
		stats.WonHistory = payload.WonHistory
	}
	for subject, metrics := range payload.SubjectStats {
		if subject.MetricsBucket() {
			stats.SubjectStats[subject] = metrics
			stats.TotalQuestions += metrics.TotalQuestions
			stats.CorrectAnswers += metrics.CorrectAnswers
		}
	}
	stats.RecomputeAccuracy()
	if payload.DoubleCreditDays != nil {
		stats.DoubleCreditDays = payload.DoubleCreditDays
	}
	return stats
}
