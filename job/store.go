package job

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
)

// Store is the fingerprint-index collaborator contract from §6: a
// key-value store with TTL and compare-and-set. Manager uses it to make
// the fingerprint -> job-id mapping the single concurrency primitive that
// lets concurrent submitters of identical bytes converge on one job.
type Store interface {
	Get(ctx context.Context, key string) (jobID string, ok bool)
	// SetCAS inserts key->jobID only if key is currently absent (or,
	// when expectedCurrent is non-empty, only if it currently equals
	// expectedCurrent). It reports whether the write happened.
	SetCAS(ctx context.Context, key string, expectedCurrent string, jobID string, ttl time.Duration) (swapped bool)
	Expire(ctx context.Context, key string)
}

type fingerprintEntry struct {
	jobID     string
	expiresAt time.Time
}

// MemStore is the bundled in-process Store implementation: a mutex-guarded
// map plus a background TTL sweeper. A snapshot can be persisted to disk
// with an atomic rename so a process restart does not silently lose
// idempotency tombstones inside the retention window.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]fingerprintEntry

	jobsMu sync.RWMutex
	jobs   map[string]*Job
	jobTTL time.Duration

	snapshotPath string
	stopSweep    chan struct{}
}

// NewMemStore constructs a MemStore and starts its TTL sweeper.
// snapshotPath may be empty to disable persistence.
func NewMemStore(snapshotPath string, sweepInterval time.Duration) *MemStore {
	s := &MemStore{
		entries:      make(map[string]fingerprintEntry),
		jobs:         make(map[string]*Job),
		snapshotPath: snapshotPath,
		stopSweep:    make(chan struct{}),
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	go s.sweepLoop(sweepInterval)
	return s
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.jobID, true
}

func (s *MemStore) SetCAS(ctx context.Context, key, expectedCurrent, jobID string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.entries[key]
	valid := exists && time.Now().Before(current.expiresAt)

	if expectedCurrent == "" {
		if valid {
			return false
		}
	} else {
		if !valid || current.jobID != expectedCurrent {
			return false
		}
	}

	s.entries[key] = fingerprintEntry{jobID: jobID, expiresAt: time.Now().Add(ttl)}
	return true
}

func (s *MemStore) Expire(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// PutJob stores (or replaces) the full Job record.
func (s *MemStore) PutJob(j *Job) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.jobs[j.ID] = j
}

// GetJob returns a point-in-time copy of a Job record.
func (s *MemStore) GetJob(id string) (Job, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.snapshot(), true
}

// SetJobTTL sets how long a completed or failed job's record is kept after
// its last update before sweepLoop evicts it (§4.8's completed,failed ->
// evicted transition). Zero disables the sweep-driven eviction; explicit
// callers of EvictExpiredJobs are unaffected.
func (s *MemStore) SetJobTTL(ttl time.Duration) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	s.jobTTL = ttl
}

func (s *MemStore) jobTTLSnapshot() time.Duration {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	return s.jobTTL
}

// EvictExpiredJobs drops completed/failed jobs older than ttl.
func (s *MemStore) EvictExpiredJobs(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for id, j := range s.jobs {
		if (j.State == StateCompleted || j.State == StateFailed) && j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

func (s *MemStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			s.sweepFingerprints()
			if ttl := s.jobTTLSnapshot(); ttl > 0 {
				s.EvictExpiredJobs(ttl)
			}
			if s.snapshotPath != "" {
				_ = s.persistSnapshot()
			}
		}
	}
}

func (s *MemStore) sweepFingerprints() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// Close stops the background sweeper.
func (s *MemStore) Close() {
	close(s.stopSweep)
}

type snapshotEntry struct {
	Key       string    `json:"key"`
	JobID     string    `json:"job_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// persistSnapshot writes the current fingerprint index to disk using an
// atomic rename, so a crash mid-write never leaves a corrupt file behind.
func (s *MemStore) persistSnapshot() error {
	s.mu.Lock()
	out := make([]snapshotEntry, 0, len(s.entries))
	for k, e := range s.entries {
		out = append(out, snapshotEntry{Key: k, JobID: e.jobID, ExpiresAt: e.expiresAt})
	}
	s.mu.Unlock()

	buf, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.snapshotPath, bytes.NewReader(buf))
}

// LoadSnapshot restores a fingerprint index previously written by
// persistSnapshot. Entries already expired at load time are dropped.
func (s *MemStore) LoadSnapshot(data []byte) error {
	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if now.Before(e.ExpiresAt) {
			s.entries[e.Key] = fingerprintEntry{jobID: e.JobID, expiresAt: e.ExpiresAt}
		}
	}
	return nil
}
