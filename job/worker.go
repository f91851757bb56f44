package job

import (
	"context"
	"errors"
	"time"

	"github.com/screen2deck/screen2deck/observability"
	"github.com/screen2deck/screen2deck/pipeline"
)

// Worker pulls queued jobs from a Manager and drives each one through a
// pipeline.Hub, honouring the per-job deadline and releasing the
// fingerprint-index entry on timeout so a resubmission may proceed.
type Worker struct {
	manager *Manager
	hub     pipeline.Hub
	log     observability.Logger
}

// NewWorker constructs a Worker against the given Manager and Hub, logging
// through log (observability.NopLogger{} if nil).
func NewWorker(manager *Manager, hub pipeline.Hub, log observability.Logger) *Worker {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Worker{manager: manager, hub: hub, log: log}
}

// Run pulls jobs until ctx is canceled. Intended to be started as a
// goroutine, one per worker in the pool.
func (w *Worker) Run(ctx context.Context) {
	for {
		id, err := w.manager.Dequeue(ctx)
		if err != nil {
			return
		}
		w.process(ctx, id)
	}
}

func (w *Worker) process(ctx context.Context, id string) {
	j, ok := w.manager.Status(id)
	if !ok {
		return
	}
	img, ok := w.manager.TakeImage(id)
	if !ok {
		w.fail(id, ErrInternal, "job image missing at dequeue")
		return
	}

	w.log.Info("job.processing", observability.String("job_id", id), observability.String("correlation_id", j.CorrelationID))

	j.State = StateProcessing
	j.Progress = 0
	j.UpdatedAt = time.Now()
	w.manager.store.PutJob(&j)

	deadline := w.manager.cfg.JobDeadline
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	state := pipeline.NewState(img)
	err := w.hub.Execute(runCtx, state)

	if errors.Is(err, context.DeadlineExceeded) {
		w.manager.ReleaseFingerprint(ctx, j.Fingerprint)
		w.log.Warn("job.timeout", observability.String("job_id", id))
		w.fail(id, ErrTimeout, "job exceeded its deadline")
		return
	}
	if err != nil {
		w.log.Error("job.pipeline_error", observability.String("job_id", id), observability.Error("error", err))
		w.fail(id, ErrInternal, err.Error())
		return
	}

	timings := make(map[string]int64, len(state.Timings))
	for phase, d := range state.Timings {
		timings[phase.String()] = d.Milliseconds()
	}

	result := newResult(state.OCR, state.Main, state.Side, state.Structure, state.Warnings, timings)

	completed, _ := w.manager.Status(id)
	completed.State = StateCompleted
	completed.Progress = 100
	completed.UpdatedAt = time.Now()
	completed.Result = result
	w.manager.store.PutJob(&completed)

	w.log.Info("job.completed",
		observability.String("job_id", id),
		observability.Int64(observability.MetricJobDuration, time.Since(j.CreatedAt).Milliseconds()),
		observability.Int(observability.MetricJobCount, 1),
		observability.Int64(observability.MetricPreprocessTime, state.Timings[pipeline.PhasePreprocess].Milliseconds()),
		observability.Int64(observability.MetricOCRTime, state.Timings[pipeline.PhaseRecognize].Milliseconds()),
		observability.Int(observability.MetricOCRVariants, state.OCR.VariantsTried),
		observability.Int64(observability.MetricParseTime, state.Timings[pipeline.PhaseParse].Milliseconds()),
		observability.Int64(observability.MetricResolveTime, state.Timings[pipeline.PhaseResolve].Milliseconds()),
		observability.Int(observability.MetricResolveOnline, state.OnlineCalls),
	)
}

func (w *Worker) fail(id string, code ErrorCode, message string) {
	j, ok := w.manager.Status(id)
	if !ok {
		return
	}
	j.State = StateFailed
	j.UpdatedAt = time.Now()
	j.Err = &Error{Code: code, Message: message}
	w.manager.store.PutJob(&j)
}
