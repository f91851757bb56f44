package job

import (
	"time"

	"github.com/screen2deck/screen2deck/imaging"
	"github.com/screen2deck/screen2deck/ocr"
	"github.com/screen2deck/screen2deck/resolve"
	"github.com/screen2deck/screen2deck/strategy"
	"github.com/screen2deck/screen2deck/structure"
)

// State is a position in the job lifecycle:
// queued -> processing -> {completed, failed} -> evicted.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ErrorCode is the job-level error taxonomy. These are kinds, not Go
// error types, because they cross the HTTP boundary verbatim.
type ErrorCode string

const (
	ErrBadImage       ErrorCode = "BAD_IMAGE"
	ErrOCRLowConf     ErrorCode = "OCR_LOW_CONF"
	ErrMatchAmbiguous ErrorCode = "MATCH_AMBIGUOUS"
	ErrExportInvalid  ErrorCode = "EXPORT_INVALID"
	ErrRateLimit      ErrorCode = "RATE_LIMIT"
	ErrTimeout        ErrorCode = "TIMEOUT"
	ErrInternal       ErrorCode = "INTERNAL"
)

// Error is the typed error attached to a failed Job.
type Error struct {
	Code    ErrorCode
	Message string
}

// NormalizedDeck is the settled output of a completed recognition run: a
// main and side section with no duplicate card IDs within a section (equal
// IDs are merged by summing quantities before the deck is ever handed to an
// Exporter) plus the warnings collected along the way.
type NormalizedDeck struct {
	Main     []resolve.ResolvedCard
	Side     []resolve.ResolvedCard
	Warnings []string
}

// Normalize merges resolved cards sharing a CardID within each section,
// summing quantities, and drops the resulting NormalizedDeck's per-card
// Candidates/Method fields from duplicates beyond the first (the first
// occurrence's resolution method is kept as representative). Unresolved
// lines (empty CardID) are never merged with one another since they do not
// identify the same card.
func Normalize(main, side []resolve.ResolvedCard, warnings []string) NormalizedDeck {
	return NormalizedDeck{Main: mergeByCardID(main), Side: mergeByCardID(side), Warnings: warnings}
}

func mergeByCardID(cards []resolve.ResolvedCard) []resolve.ResolvedCard {
	out := make([]resolve.ResolvedCard, 0, len(cards))
	index := make(map[string]int, len(cards))
	for _, c := range cards {
		if c.CardID == "" {
			out = append(out, c)
			continue
		}
		if i, ok := index[c.CardID]; ok {
			out[i].Quantity += c.Quantity
			continue
		}
		index[c.CardID] = len(out)
		out = append(out, c)
	}
	return out
}

// Result is the payload a completed Job carries: the winning OCR run, the
// resolved deck, the structural-hint report, and per-phase timings in
// milliseconds.
type Result struct {
	OCR        ocr.Run
	UsedVision bool
	Deck       NormalizedDeck
	Structure  *structure.Report
	TimingsMS  map[string]int64
}

// Job is the unit of work tracked by Manager and Store.
type Job struct {
	ID            string
	Fingerprint   imaging.Fingerprint
	CorrelationID string
	State         State
	Progress      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Result        *Result
	Err           *Error
}

// snapshot returns a shallow copy safe to hand to a status poller without
// risking it observing a torn write from the owning worker.
func (j *Job) snapshot() Job {
	cp := *j
	return cp
}

// newResult stamps a job's result fields from a finished pipeline run, used
// by Worker once pipeline.Hub completes successfully.
func newResult(outcome strategy.Outcome, main, side []resolve.ResolvedCard, rep *structure.Report, warnings []string, timings map[string]int64) *Result {
	return &Result{
		OCR:        outcome.Run,
		UsedVision: outcome.UsedSecondary,
		Deck:       Normalize(main, side, warnings),
		Structure:  rep,
		TimingsMS:  timings,
	}
}
