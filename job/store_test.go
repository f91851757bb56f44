package job

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSetCASInsertsOnlyWhenAbsent(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()
	ctx := context.Background()

	if !s.SetCAS(ctx, "fp1", "", "job-a", time.Minute) {
		t.Fatal("expected first CAS insert to succeed")
	}
	if s.SetCAS(ctx, "fp1", "", "job-b", time.Minute) {
		t.Fatal("expected second CAS insert against an occupied key to fail")
	}

	id, ok := s.Get(ctx, "fp1")
	if !ok || id != "job-a" {
		t.Fatalf("expected job-a, got %q ok=%v", id, ok)
	}
}

func TestSetCASReplacesMatchingCurrent(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()
	ctx := context.Background()

	s.SetCAS(ctx, "fp1", "", "job-a", time.Minute)
	if !s.SetCAS(ctx, "fp1", "job-a", "job-b", time.Minute) {
		t.Fatal("expected CAS replace against matching current value to succeed")
	}
	id, _ := s.Get(ctx, "fp1")
	if id != "job-b" {
		t.Fatalf("expected job-b after replace, got %q", id)
	}
}

func TestGetReportsExpiredEntriesAsAbsent(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()
	ctx := context.Background()

	s.SetCAS(ctx, "fp1", "", "job-a", -time.Second)
	if _, ok := s.Get(ctx, "fp1"); ok {
		t.Fatal("expected an already-expired entry to read as absent")
	}
	if !s.SetCAS(ctx, "fp1", "", "job-b", time.Minute) {
		t.Fatal("expected CAS insert to succeed once the prior entry has expired")
	}
}

func TestExpireRemovesEntry(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()
	ctx := context.Background()

	s.SetCAS(ctx, "fp1", "", "job-a", time.Minute)
	s.Expire(ctx, "fp1")
	if _, ok := s.Get(ctx, "fp1"); ok {
		t.Fatal("expected entry to be gone after Expire")
	}
}

func TestPersistAndLoadSnapshotRoundTrips(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()
	ctx := context.Background()
	s.SetCAS(ctx, "fp1", "", "job-a", time.Hour)
	s.SetCAS(ctx, "fp2", "", "job-b", -time.Second)

	s.mu.Lock()
	out := make([]snapshotEntry, 0, len(s.entries))
	for k, e := range s.entries {
		out = append(out, snapshotEntry{Key: k, JobID: e.jobID, ExpiresAt: e.expiresAt})
	}
	s.mu.Unlock()

	restored := NewMemStore("", time.Hour)
	defer restored.Close()

	buf, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := restored.LoadSnapshot(buf); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}

	if id, ok := restored.Get(ctx, "fp1"); !ok || id != "job-a" {
		t.Fatalf("expected fp1 to survive restore, got %q ok=%v", id, ok)
	}
	if _, ok := restored.Get(ctx, "fp2"); ok {
		t.Fatal("expected already-expired fp2 to be dropped on restore")
	}
}

func TestEvictExpiredJobsDropsOnlyTerminalJobs(t *testing.T) {
	s := NewMemStore("", time.Hour)
	defer s.Close()

	old := time.Now().Add(-2 * time.Hour)
	s.PutJob(&Job{ID: "done", State: StateCompleted, UpdatedAt: old})
	s.PutJob(&Job{ID: "failed", State: StateFailed, UpdatedAt: old})
	s.PutJob(&Job{ID: "running", State: StateProcessing, UpdatedAt: old})

	s.EvictExpiredJobs(time.Hour)

	if _, ok := s.GetJob("done"); ok {
		t.Fatal("expected completed job older than ttl to be evicted")
	}
	if _, ok := s.GetJob("failed"); ok {
		t.Fatal("expected failed job older than ttl to be evicted")
	}
	if _, ok := s.GetJob("running"); !ok {
		t.Fatal("expected in-flight job to survive eviction regardless of age")
	}
}

func TestSweepLoopEvictsExpiredJobsOnceTTLIsSet(t *testing.T) {
	s := NewMemStore("", 10*time.Millisecond)
	defer s.Close()

	old := time.Now().Add(-time.Hour)
	s.PutJob(&Job{ID: "done", State: StateCompleted, UpdatedAt: old})
	s.SetJobTTL(time.Minute)

	deadline := time.After(time.Second)
	for {
		if _, ok := s.GetJob("done"); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expected sweepLoop to evict the completed job via EvictExpiredJobs")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
