package ocr

import "github.com/screen2deck/screen2deck/preprocess"

// minSpanConfidence excludes spans an engine is not confident about from the
// mean-confidence calculation, so that a handful of garbage tokens does not
// drag a mostly-correct run below the early-stop threshold. Defaults to the
// configuration surface's ocr_min_span_conf default; SetMinSpanConfidence
// overrides it from the configured value at startup, the same
// package-level-var-plus-setter pattern DefaultEngine uses.
var minSpanConfidence = 0.3

// SetMinSpanConfidence overrides the span confidence floor ComputeRun applies.
func SetMinSpanConfidence(v float64) {
	minSpanConfidence = v
}

// ComputeRun derives MeanConfidence and LineCount from raw spans. lineCount
// is supplied by the caller because only the engine knows how spans grouped
// into lines (Tesseract reports this via its line-level bounding boxes;
// other engines may derive it differently).
func ComputeRun(kind preprocess.VariantKind, plainText string, spans []Span, lineCount int) Run {
	var sum float64
	var counted int
	for _, s := range spans {
		if s.Confidence >= minSpanConfidence {
			sum += s.Confidence
			counted++
		}
	}
	mean := 0.0
	if counted > 0 {
		mean = sum / float64(counted)
	}
	return Run{
		VariantKind:    kind,
		PlainText:      plainText,
		Spans:          spans,
		MeanConfidence: mean,
		LineCount:      lineCount,
	}
}
