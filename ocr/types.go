package ocr

import (
	"context"

	"github.com/screen2deck/screen2deck/preprocess"
)

// Box describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the variant image.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the box has non-positive dimensions.
func (b Box) IsEmpty() bool { return b.Width <= 0 || b.Height <= 0 }

// Span is a single recognised token with the engine's self-reported
// confidence, per §3.
type Span struct {
	Text       string
	Confidence float64
	Box        Box
}

// Run is a complete OCR result for one image Variant: its recognised spans
// plus the derived mean confidence and line count. MeanConfidence is the
// arithmetic mean of span confidences at or above the configured minimum
// span confidence (see SetMinSpanConfidence in run.go); ComputeRun (see
// run.go) is the only place that invariant is enforced, so engine
// implementations should return raw spans and let ComputeRun derive these
// fields.
type Run struct {
	VariantKind    preprocess.VariantKind
	PlainText      string
	Spans          []Span
	MeanConfidence float64
	LineCount      int
}

// Engine is the simplest OCR provider contract: one variant in, one run out.
// Implementations MUST NOT consult the network during Recognize (§4.4) and
// MUST be deterministic for identical input and identical model weights.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, variant preprocess.Variant) (Run, error)
}

// BatchEngine handles multiple variants in a single call, for providers that
// amortise setup costs (e.g. spawning a Tesseract client once per job rather
// than per variant).
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, variants []preprocess.Variant) ([]Run, error)
}
