package sync

import (
	"context"
	"errors"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"studyquest/internal/database"
	"studyquest/internal/models"
	"studyquest/internal/remote"
	"studyquest/internal/repository"
)

func newTestRepo(t *testing.T) *repository.StateRepository {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "sync_test.db"))
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

// fakeRemote records writes and serves canned fetches.
type fakeRemote struct {
	mu         stdsync.Mutex
	fetchDocs  *remote.Documents
	fetchErr   error
	writeErr   error
	writeCount int
	lastWrite  *remote.Documents
}

func (f *fakeRemote) Fetch(ctx context.Context) (*remote.Documents, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchDocs, nil
}

func (f *fakeRemote) Write(ctx context.Context, docs remote.Documents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writeCount++
	f.lastWrite = &docs
	return nil
}

func (f *fakeRemote) writes() (int, *remote.Documents) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCount, f.lastWrite
}

func TestHydrateWithoutRemoteIsOffline(t *testing.T) {
	repo := newTestRepo(t)
	o := New(repo, nil, 10*time.Millisecond)

	stats, prizes, worksheets, err := o.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if o.Status() != StatusOffline {
		t.Errorf("Status = %s, want offline", o.Status())
	}
	if stats.Credits != 0 || len(prizes) != 0 || len(worksheets) != 0 {
		t.Error("empty local store must hydrate to zero-value aggregates")
	}
}

func TestHydrateRemoteAuthoritative(t *testing.T) {
	repo := newTestRepo(t)

	// the local store holds stale data the remote must override
	localStats := models.NewStats()
	localStats.Credits = 1
	if err := repo.SaveAggregates(localStats, nil, nil); err != nil {
		t.Fatal(err)
	}

	remoteStats := models.NewStats()
	remoteStats.Credits = 42
	fake := &fakeRemote{fetchDocs: &remote.Documents{
		Stats:  remoteStats,
		Prizes: []models.Prize{{ID: "p1", Name: "Cinema", Cost: 10}},
	}}

	o := New(repo, fake, 10*time.Millisecond)
	stats, prizes, _, err := o.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if o.Status() != StatusOnline {
		t.Errorf("Status = %s, want online", o.Status())
	}
	if stats.Credits != 42 {
		t.Errorf("Credits = %v, want remote value 42", stats.Credits)
	}
	if len(prizes) != 1 {
		t.Errorf("prizes = %v, want the remote prize", prizes)
	}
}

func TestHydrateFallsBackToLocalOnRemoteFailure(t *testing.T) {
	repo := newTestRepo(t)

	localStats := models.NewStats()
	localStats.Credits = 7.5
	if err := repo.SaveAggregates(localStats, []models.Prize{{ID: "p1"}}, nil); err != nil {
		t.Fatal(err)
	}

	fake := &fakeRemote{fetchErr: errors.New("network down")}
	o := New(repo, fake, 10*time.Millisecond)

	stats, prizes, _, err := o.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if o.Status() != StatusError {
		t.Errorf("Status = %s, want error", o.Status())
	}
	if stats.Credits != 7.5 || len(prizes) != 1 {
		t.Error("fallback must return the local store contents")
	}
}

func TestHydrateAbsentRemoteRecordIsError(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{fetchErr: remote.ErrNoRecord}
	o := New(repo, fake, 10*time.Millisecond)

	stats, _, _, err := o.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if o.Status() != StatusError {
		t.Errorf("Status = %s, want error", o.Status())
	}
	if stats.Credits != 0 {
		t.Error("empty local store must yield defaults")
	}
}

func TestDebounceCollapsesWrites(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{}
	o := New(repo, fake, 40*time.Millisecond)

	stats := models.NewStats()
	for i := 1; i <= 5; i++ {
		stats.Credits = float64(i)
		if err := o.OnAggregateChange(stats, nil, nil); err != nil {
			t.Fatalf("OnAggregateChange() error = %v", err)
		}
	}

	time.Sleep(200 * time.Millisecond)

	count, last := fake.writes()
	if count != 1 {
		t.Fatalf("remote writes = %d, want exactly 1", count)
	}
	if last.Stats.Credits != 5 {
		t.Errorf("written credits = %v, want the final value 5", last.Stats.Credits)
	}
	if o.Status() != StatusOnline {
		t.Errorf("Status = %s, want online after successful write", o.Status())
	}
}

func TestMutationsAcrossQuietWindowsWriteAgain(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{}
	o := New(repo, fake, 30*time.Millisecond)

	stats := models.NewStats()
	stats.Credits = 1
	if err := o.OnAggregateChange(stats, nil, nil); err != nil {
		t.Fatal(err)
	}
	time.Sleep(120 * time.Millisecond)

	stats.Credits = 2
	if err := o.OnAggregateChange(stats, nil, nil); err != nil {
		t.Fatal(err)
	}
	time.Sleep(120 * time.Millisecond)

	count, last := fake.writes()
	if count != 2 {
		t.Fatalf("remote writes = %d, want 2", count)
	}
	if last.Stats.Credits != 2 {
		t.Errorf("written credits = %v, want 2", last.Stats.Credits)
	}
}

func TestRemoteWriteFailureLeavesLocalIntact(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{writeErr: errors.New("remote down")}
	o := New(repo, fake, 20*time.Millisecond)

	stats := models.NewStats()
	stats.Credits = 9
	if err := o.OnAggregateChange(stats, nil, nil); err != nil {
		t.Fatalf("OnAggregateChange() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if o.Status() != StatusError {
		t.Errorf("Status = %s, want error", o.Status())
	}

	loaded, err := repo.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Credits != 9 {
		t.Errorf("local credits = %v, want 9 despite remote failure", loaded.Credits)
	}
}

func TestPendingSnapshotIsIsolatedFromLaterMutations(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{}
	o := New(repo, fake, 40*time.Millisecond)

	stats := models.NewStats()
	stats.Credits = 10
	if err := o.OnAggregateChange(stats, nil, nil); err != nil {
		t.Fatal(err)
	}

	// mutate the caller's aggregate without notifying the orchestrator
	stats.Credits = 99

	time.Sleep(150 * time.Millisecond)

	_, last := fake.writes()
	if last.Stats.Credits != 10 {
		t.Errorf("written credits = %v, want the snapshot value 10", last.Stats.Credits)
	}
}

func TestShutdownFlushesPendingWrite(t *testing.T) {
	repo := newTestRepo(t)
	fake := &fakeRemote{}
	o := New(repo, fake, 10*time.Second) // quiet window longer than the test

	stats := models.NewStats()
	stats.Credits = 3
	if err := o.OnAggregateChange(stats, nil, nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	o.Shutdown(ctx)

	count, last := fake.writes()
	if count != 1 || last.Stats.Credits != 3 {
		t.Errorf("shutdown flush: writes = %d, credits = %v, want 1 write of 3", count, last.Stats.Credits)
	}
}
