package sync

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"studyquest/internal/models"
	"studyquest/internal/remote"
	"studyquest/internal/repository"
)

// Status is the connectivity signal surfaced to the UI shell.
type Status string

const (
	StatusOffline Status = "offline"
	StatusSyncing Status = "syncing"
	StatusOnline  Status = "online"
	StatusError   Status = "error"
)

// DefaultQuietWindow is the debounce interval for outbound remote writes.
const DefaultQuietWindow = 1500 * time.Millisecond

// Orchestrator persists aggregate changes locally first and mirrors them to
// the remote store through a single-slot debounced writer: repeated changes
// within the quiet window collapse into one outbound write carrying the
// latest state. Remote failures never affect the local copy.
type Orchestrator struct {
	repo   *repository.StateRepository
	remote remote.Store // nil when no remote endpoint is configured
	quiet  time.Duration

	mu      sync.Mutex
	status  Status
	pending *remote.Documents // latest pending write, nil when none
	timer   *time.Timer

	wg sync.WaitGroup
}

// New creates an orchestrator. remoteStore may be nil for local-only mode.
func New(repo *repository.StateRepository, remoteStore remote.Store, quiet time.Duration) *Orchestrator {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Orchestrator{
		repo:   repo,
		remote: remoteStore,
		quiet:  quiet,
		status: StatusOffline,
	}
}

// Status returns the current connectivity signal.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

// Hydrate loads the three aggregates at startup. With a remote configured
// the remote copy is authoritative; on any remote failure (including an
// absent record) the status settles to Error and the local store is used.
// Without a remote the local store is loaded directly in Offline mode.
func (o *Orchestrator) Hydrate(ctx context.Context) (*models.Stats, []models.Prize, []models.Worksheet, error) {
	if o.remote != nil {
		o.setStatus(StatusSyncing)

		docs, err := o.remote.Fetch(ctx)
		if err == nil {
			o.setStatus(StatusOnline)
			return docs.Stats, docs.Prizes, docs.Worksheets, nil
		}

		log.Printf("Remote hydrate failed, falling back to local store: %v", err)
		o.setStatus(StatusError)
	}

	stats, err := o.repo.LoadStats()
	if err != nil {
		return nil, nil, nil, err
	}
	prizes, err := o.repo.LoadPrizes()
	if err != nil {
		return nil, nil, nil, err
	}
	worksheets, err := o.repo.LoadWorksheets()
	if err != nil {
		return nil, nil, nil, err
	}
	return stats, prizes, worksheets, nil
}

// OnAggregateChange persists all three aggregates to the local store
// synchronously, then schedules the debounced remote write. The pending
// snapshot is deep-copied so later in-memory mutations cannot leak into an
// already scheduled write.
func (o *Orchestrator) OnAggregateChange(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) error {
	if err := o.repo.SaveAggregates(stats, prizes, worksheets); err != nil {
		return err
	}

	if o.remote == nil {
		return nil
	}

	docs, err := cloneDocuments(stats, prizes, worksheets)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.pending = docs
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.quiet, o.flush)
	o.mu.Unlock()

	return nil
}

// flush drains the pending slot and performs one remote write. A stale
// in-flight write superseded by a newer change is harmless: the next
// debounced write carries the newer state.
func (o *Orchestrator) flush() {
	o.mu.Lock()
	docs := o.pending
	o.pending = nil
	o.mu.Unlock()

	if docs == nil {
		return
	}

	o.wg.Add(1)
	defer o.wg.Done()

	o.setStatus(StatusSyncing)
	if err := o.remote.Write(context.Background(), *docs); err != nil {
		log.Printf("Remote write failed (local copy unaffected): %v", err)
		o.setStatus(StatusError)
		return
	}
	o.setStatus(StatusOnline)
}

// Shutdown cancels the debounce timer and writes any pending snapshot so a
// clean exit does not lose the last mutation.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.mu.Lock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	o.flush()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// cloneDocuments deep-copies the aggregate set via a JSON round trip.
func cloneDocuments(stats *models.Stats, prizes []models.Prize, worksheets []models.Worksheet) (*remote.Documents, error) {
	body, err := json.Marshal(remoteSnapshot{Stats: stats, Prizes: prizes, Worksheets: worksheets})
	if err != nil {
		return nil, err
	}

	var snap remoteSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &remote.Documents{Stats: snap.Stats, Prizes: snap.Prizes, Worksheets: snap.Worksheets}, nil
}

type remoteSnapshot struct {
	Stats      *models.Stats      `json:"stats"`
	Prizes     []models.Prize     `json:"prizes"`
	Worksheets []models.Worksheet `json:"worksheets"`
}
