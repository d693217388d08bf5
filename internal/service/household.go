package service

import (
	"context"
	stdsync "sync"

	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/sync"
)

// Household owns the three in-memory aggregates for the single tenant. All
// mutations run under one lock and are followed by the orchestrator's
// local-first persist, so no two mutations ever interleave mid-update.
type Household struct {
	mu         stdsync.Mutex
	stats      *models.Stats
	prizes     []models.Prize
	worksheets []models.Worksheet

	repo   *repository.StateRepository
	syncer *sync.Orchestrator
}

// NewHousehold creates the aggregate holder. Call Hydrate before use.
func NewHousehold(repo *repository.StateRepository, syncer *sync.Orchestrator) *Household {
	return &Household{
		stats:      models.NewStats(),
		prizes:     []models.Prize{},
		worksheets: []models.Worksheet{},
		repo:       repo,
		syncer:     syncer,
	}
}

// Hydrate loads the aggregates through the sync orchestrator: remote copy
// when available, local store otherwise.
func (h *Household) Hydrate(ctx context.Context) error {
	stats, prizes, worksheets, err := h.syncer.Hydrate(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = stats
	h.prizes = prizes
	h.worksheets = worksheets
	return nil
}

// SyncStatus returns the orchestrator's connectivity signal.
func (h *Household) SyncStatus() sync.Status {
	return h.syncer.Status()
}

// mutate applies fn atomically, then persists all three aggregates through
// the orchestrator. When fn fails nothing is persisted.
func (h *Household) mutate(fn func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) ([]models.Prize, []models.Worksheet, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	prizes, worksheets, err := fn(h.stats, h.prizes, h.worksheets)
	if err != nil {
		return err
	}
	h.prizes = prizes
	h.worksheets = worksheets

	return h.syncer.OnAggregateChange(h.stats, h.prizes, h.worksheets)
}

// view runs fn with shared read access to the aggregates. fn must not
// retain or mutate what it is handed.
func (h *Household) view(fn func(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.stats, h.prizes, h.worksheets)
}

// StatsSnapshot returns a copy of the Stats aggregate safe to hand out.
func (h *Household) StatsSnapshot() models.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return copyStats(h.stats)
}

// PrizesSnapshot returns a copy of the prize list.
func (h *Household) PrizesSnapshot() []models.Prize {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Prize(nil), h.prizes...)
}

// WorksheetsSnapshot returns a copy of the worksheet list.
func (h *Household) WorksheetsSnapshot() []models.Worksheet {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Worksheet(nil), h.worksheets...)
}

func copyStats(s *models.Stats) models.Stats {
	out := *s
	out.WonHistory = append([]models.WonPrize(nil), s.WonHistory...)
	out.RecentWorksheetIDs = append([]string(nil), s.RecentWorksheetIDs...)
	out.DoubleCreditDays = append([]int(nil), s.DoubleCreditDays...)
	out.SubjectStats = make(map[models.Subject]models.SubjectMetrics, len(s.SubjectStats))
	for subject, metrics := range s.SubjectStats {
		out.SubjectStats[subject] = metrics
	}
	return out
}
