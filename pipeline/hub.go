package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/screen2deck/screen2deck/observability"
)

// Phase is an ordered stage of the recognition pipeline.
type Phase int

const (
	PhaseIngest Phase = iota
	PhasePreprocess
	PhaseRecognize
	PhaseParse
	PhaseResolve
	PhaseFinalize
)

func (p Phase) String() string {
	names := [...]string{"Ingest", "Preprocess", "Recognize", "Parse", "Resolve", "Finalize"}
	if int(p) < 0 || int(p) >= len(names) {
		return "Unknown"
	}
	return names[p]
}

var orderedPhases = []Phase{PhaseIngest, PhasePreprocess, PhaseRecognize, PhaseParse, PhaseResolve, PhaseFinalize}

// Stage is a single unit of work within a Phase.
type Stage interface {
	Name() string
	Phase() Phase
	Priority() int
	Execute(ctx context.Context, state *State) error
}

// Hub registers Stages and runs them in phase order, timing each one.
type Hub interface {
	Register(stage Stage) error
	Execute(ctx context.Context, state *State) error
	Stages(phase Phase) []Stage
}

// HubImpl is the default in-process Hub implementation.
type HubImpl struct {
	stages map[Phase][]Stage
	tracer observability.Tracer
}

// NewHub constructs an empty Hub.
func NewHub() *HubImpl {
	return &HubImpl{stages: make(map[Phase][]Stage)}
}

// WithTracer sets the tracer used to span each Stage's Execute call.
func (h *HubImpl) WithTracer(tracer observability.Tracer) *HubImpl {
	h.tracer = tracer
	return h
}

func (h *HubImpl) resolvedTracer() observability.Tracer {
	if h.tracer == nil {
		return observability.NopTracer()
	}
	return h.tracer
}

// Register adds a Stage under its declared Phase, keeping stages within a
// phase sorted by ascending Priority.
func (h *HubImpl) Register(stage Stage) error {
	ph := stage.Phase()
	h.stages[ph] = append(h.stages[ph], stage)
	sort.Slice(h.stages[ph], func(i, j int) bool {
		return h.stages[ph][i].Priority() < h.stages[ph][j].Priority()
	})
	return nil
}

// Execute runs every registered Stage in phase order, accumulating each
// stage's wall-clock duration into state.Timings keyed by Phase. Execution
// stops at the first Stage error.
func (h *HubImpl) Execute(ctx context.Context, state *State) error {
	tracer := h.resolvedTracer()
	for _, ph := range orderedPhases {
		start := time.Now()
		for _, stage := range h.stages[ph] {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			spanCtx, span := tracer.StartSpan(ctx, stage.Name())
			err := stage.Execute(spanCtx, state)
			if err != nil {
				span.SetError(err)
			}
			span.Finish()
			if err != nil {
				return err
			}
		}
		state.Timings[ph] = time.Since(start)
	}
	return nil
}

// Stages returns a copy of the stages registered under a phase.
func (h *HubImpl) Stages(phase Phase) []Stage {
	return append([]Stage(nil), h.stages[phase]...)
}
