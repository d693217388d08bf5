package codec

import (
	"errors"
	"testing"

	"studyquest/internal/models"
)

func sampleAggregates() (*models.Stats, []models.Prize, []models.Worksheet) {
	stats := models.NewStats()
	stats.Credits = 12.5
	stats.WonHistory = []models.WonPrize{
		{ID: "p1", Name: "Cinema", Cost: 10, Unlocked: true, DateWon: "2026-08-01"},
	}
	stats.SubjectStats[models.SubjectMath] = models.SubjectMetrics{TotalMinutes: 30, TotalQuestions: 20, CorrectAnswers: 15}
	stats.DoubleCreditDays = []int{0, 6}

	prizes := []models.Prize{
		{ID: "p1", Name: "Cinema", Cost: 10, Unlocked: true},
		{ID: "p2", Name: "Ice cream", Cost: 5},
	}
	worksheets := []models.Worksheet{
		{ID: "w1", Subject: models.SubjectMath, Images: []string{"aW1n"}, Name: "Fractions", Date: "2026-08-10"},
	}
	return stats, prizes, worksheets
}

func TestExportImportRoundTrip(t *testing.T) {
	stats, prizes, worksheets := sampleAggregates()

	blob, err := ExportBlob(stats, prizes, worksheets)
	if err != nil {
		t.Fatalf("ExportBlob() error = %v", err)
	}

	payload, err := ImportBlob(blob)
	if err != nil {
		t.Fatalf("ImportBlob() error = %v", err)
	}

	if len(payload.Prizes) != 2 || payload.Prizes[0].ID != "p1" || !payload.Prizes[0].Unlocked {
		t.Errorf("prizes did not round-trip: %+v", payload.Prizes)
	}
	if len(payload.Worksheets) != 1 || payload.Worksheets[0].Subject != models.SubjectMath {
		t.Errorf("worksheets did not round-trip: %+v", payload.Worksheets)
	}
	if payload.Stats == nil {
		t.Fatal("stats section missing from payload")
	}
	if payload.Stats.Credits != 12.5 {
		t.Errorf("credits = %v, want 12.5", payload.Stats.Credits)
	}

	merged := MergeStats(payload.Stats)
	if merged.Credits != 12.5 {
		t.Errorf("merged credits = %v, want 12.5", merged.Credits)
	}
	if got := merged.SubjectStats[models.SubjectMath]; got.CorrectAnswers != 15 {
		t.Errorf("merged math metrics = %+v, want 15 correct", got)
	}
	if merged.TotalQuestions != 20 || merged.CorrectAnswers != 15 {
		t.Errorf("merged totals = %d/%d, want 20/15", merged.TotalQuestions, merged.CorrectAnswers)
	}
	if merged.Accuracy != 75 {
		t.Errorf("merged accuracy = %d, want 75", merged.Accuracy)
	}
	if len(merged.DoubleCreditDays) != 2 {
		t.Errorf("double credit days = %v, want [0 6]", merged.DoubleCreditDays)
	}
}

func TestImportBlobRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"base64 of non-JSON", "bm90IGpzb24="}, // "not json"
		{"truncated payload", "eyJwcml6ZXMiOl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportBlob(tt.blob); !errors.Is(err, ErrInvalidImportPayload) {
				t.Errorf("ImportBlob() error = %v, want ErrInvalidImportPayload", err)
			}
		})
	}
}

func TestMergeStatsDefaults(t *testing.T) {
	// an old backup with no stats section at all
	merged := MergeStats(nil)
	if merged.Credits != 0 {
		t.Errorf("credits = %v, want 0", merged.Credits)
	}
	if len(merged.SubjectStats) != len(models.MetricSubjects) {
		t.Error("defaults must carry every metrics bucket")
	}

	// a stats section missing most fields merges over defaults
	merged = MergeStats(&StatsPayload{Credits: 3})
	if merged.Credits != 3 {
		t.Errorf("credits = %v, want 3", merged.Credits)
	}
	if merged.WonHistory == nil || merged.RecentWorksheetIDs == nil {
		t.Error("absent sections must keep their zero-value defaults, not become nil")
	}
}

func TestExportBlobIsSingleLine(t *testing.T) {
	stats, prizes, worksheets := sampleAggregates()
	blob, err := ExportBlob(stats, prizes, worksheets)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range blob {
		if r == '\n' || r == '\r' {
			t.Fatal("blob must be a single transport-safe line")
		}
	}
}
