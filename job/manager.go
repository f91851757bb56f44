package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/screen2deck/screen2deck/imaging"
	"github.com/screen2deck/screen2deck/observability"
)

// Config mirrors the job-lifecycle portion of the configuration surface.
type Config struct {
	MaxImageBytes  int
	JobTTL         time.Duration
	FingerprintTTL time.Duration
	JobDeadline    time.Duration
	MaxQueueDepth  int
}

// DefaultConfig matches the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxImageBytes:  10 << 20,
		JobTTL:         time.Hour,
		FingerprintTTL: 7 * 24 * time.Hour,
		JobDeadline:    30 * time.Second,
		MaxQueueDepth:  256,
	}
}

// Manager implements the JobManager surface: submit, status, and the
// fingerprint-based idempotency index.
type Manager struct {
	cfg   Config
	store *MemStore
	queue chan string
	log   observability.Logger

	// images holds the sanitised image for a queued job until a Worker
	// picks it up. It is kept separate from Job because an image exists
	// only for the duration of processing and is never persisted.
	images struct {
		mu      sync.Mutex
		byJobID map[string]imaging.Image
	}
}

// NewManager constructs a Manager backed by the given MemStore. queue
// buffers job IDs awaiting a Worker; Submit returns RATE_LIMIT once it is
// full, per the backpressure contract. log may be nil, in which case
// submissions are not logged.
func NewManager(cfg Config, store *MemStore, log observability.Logger) *Manager {
	if log == nil {
		log = observability.NopLogger{}
	}
	store.SetJobTTL(cfg.JobTTL)
	return &Manager{cfg: cfg, store: store, queue: make(chan string, cfg.MaxQueueDepth), log: log}
}

// SubmitResult is Submit's return value.
type SubmitResult struct {
	JobID  string
	Cached bool
}

// Submit sanitises and fingerprints the image, resolves idempotency
// against the fingerprint index via compare-and-set, and enqueues a new
// Job only when no matching fingerprint entry exists or the entry's job
// record has already been evicted.
func (m *Manager) Submit(ctx context.Context, raw []byte) (SubmitResult, *Error) {
	img, err := imaging.Sanitize(raw, m.cfg.MaxImageBytes)
	if err != nil {
		return SubmitResult{}, &Error{Code: ErrBadImage, Message: err.Error()}
	}
	fp := imaging.ComputeFingerprint(img.Bytes)
	key := fp.String()

	// An index entry whose job record is gone is a tombstone: the result
	// was evicted, so the entry is swapped for a fresh job below.
	expected := ""
	if existingID, ok := m.store.Get(ctx, key); ok {
		if existing, found := m.store.GetJob(existingID); found {
			return SubmitResult{JobID: existing.ID, Cached: true}, nil
		}
		expected = existingID
	}

	newID := uuid.NewString()
	if !m.store.SetCAS(ctx, key, expected, newID, m.cfg.FingerprintTTL) {
		// Lost the race: another submitter changed the entry first between
		// our Get and SetCAS. Their job is authoritative.
		if existingID, ok := m.store.Get(ctx, key); ok {
			return SubmitResult{JobID: existingID, Cached: true}, nil
		}
		return SubmitResult{}, &Error{Code: ErrInternal, Message: "fingerprint index contention"}
	}

	now := time.Now()
	j := &Job{
		ID:            newID,
		Fingerprint:   fp,
		CorrelationID: uuid.NewString(),
		State:         StateQueued,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.store.PutJob(j)
	m.attachImage(j.ID, img)

	select {
	case m.queue <- j.ID:
	default:
		m.store.Expire(ctx, key)
		m.log.Warn("job.queue_full", observability.String("job_id", j.ID))
		return SubmitResult{}, &Error{Code: ErrRateLimit, Message: "queue depth exceeded"}
	}

	m.log.Info("job.submitted", observability.String("job_id", j.ID), observability.String("correlation_id", j.CorrelationID))
	return SubmitResult{JobID: j.ID, Cached: false}, nil
}

// Status returns a point-in-time snapshot of a Job.
func (m *Manager) Status(id string) (Job, bool) {
	return m.store.GetJob(id)
}

// Dequeue blocks until a queued job ID is available or ctx is canceled,
// for Worker's pull loop.
func (m *Manager) Dequeue(ctx context.Context) (string, error) {
	select {
	case id := <-m.queue:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) attachImage(jobID string, img imaging.Image) {
	m.images.mu.Lock()
	defer m.images.mu.Unlock()
	if m.images.byJobID == nil {
		m.images.byJobID = make(map[string]imaging.Image)
	}
	m.images.byJobID[jobID] = img
}

// TakeImage removes and returns the sanitised image queued for a job, for
// Worker to consume exactly once.
func (m *Manager) TakeImage(jobID string) (imaging.Image, bool) {
	m.images.mu.Lock()
	defer m.images.mu.Unlock()
	img, ok := m.images.byJobID[jobID]
	delete(m.images.byJobID, jobID)
	return img, ok
}

// ReleaseFingerprint deletes the fingerprint index entry for a job, used
// by Worker when a job times out so a resubmission may proceed.
func (m *Manager) ReleaseFingerprint(ctx context.Context, fp imaging.Fingerprint) {
	m.store.Expire(ctx, fp.String())
}
