package ocr

import (
	"context"
	"testing"

	"github.com/screen2deck/screen2deck/preprocess"
)

func TestComputeRunExcludesLowConfidenceSpans(t *testing.T) {
	spans := []Span{
		{Text: "Lightning", Confidence: 0.9},
		{Text: "Bolt", Confidence: 0.8},
		{Text: "garbage", Confidence: 0.1},
	}
	run := ComputeRun(preprocess.KindOriginal, "Lightning Bolt\ngarbage", spans, 1)
	if run.LineCount != 1 {
		t.Fatalf("LineCount = %d, want 1", run.LineCount)
	}
	want := (0.9 + 0.8) / 2
	if diff := run.MeanConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("MeanConfidence = %v, want %v", run.MeanConfidence, want)
	}
	if len(run.Spans) != 3 {
		t.Fatalf("expected raw spans preserved, got %d", len(run.Spans))
	}
}

func TestComputeRunAllBelowThreshold(t *testing.T) {
	spans := []Span{{Text: "x", Confidence: 0.05}}
	run := ComputeRun(preprocess.KindDenoised, "x", spans, 0)
	if run.MeanConfidence != 0 {
		t.Fatalf("MeanConfidence = %v, want 0", run.MeanConfidence)
	}
}

type recordingEngine struct {
	calls int
}

func (r *recordingEngine) Name() string { return "recording" }

func (r *recordingEngine) Recognize(ctx context.Context, v preprocess.Variant) (Run, error) {
	r.calls++
	return Run{VariantKind: v.Kind}, nil
}

func TestRecognizeVariantsSequential(t *testing.T) {
	eng := &recordingEngine{}
	variants := []preprocess.Variant{{Kind: preprocess.KindOriginal}, {Kind: preprocess.KindSharpened}}
	runs, err := RecognizeVariants(context.Background(), eng, variants)
	if err != nil {
		t.Fatalf("RecognizeVariants() error = %v", err)
	}
	if len(runs) != 2 || eng.calls != 2 {
		t.Fatalf("expected 2 sequential calls, got %d runs, %d calls", len(runs), eng.calls)
	}
}

func TestNoopEngineReturnsEmptyRun(t *testing.T) {
	var eng Engine = noopEngine{}
	run, err := eng.Recognize(context.Background(), preprocess.Variant{Kind: preprocess.KindBinarised})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if run.VariantKind != preprocess.KindBinarised || len(run.Spans) != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
}
