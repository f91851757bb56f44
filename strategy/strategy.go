package strategy

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/screen2deck/screen2deck/deckparse"
	"github.com/screen2deck/screen2deck/imaging"
	"github.com/screen2deck/screen2deck/ocr"
	"github.com/screen2deck/screen2deck/preprocess"
)

// FallbackReason explains why the secondary OCR engine was invoked, or why
// it wasn't, for observability.
type FallbackReason string

const (
	FallbackNone          FallbackReason = ""
	FallbackLowConfidence FallbackReason = "low_confidence"
	FallbackMinLines      FallbackReason = "min_lines"
	FallbackError         FallbackReason = "error"
)

// Config mirrors the OCRStrategy portion of the configuration surface.
type Config struct {
	EarlyStopConfidence     float64
	FallbackConfidenceFloor float64
	FallbackMinLines        int
	VisionFallbackEnabled   bool
	SecondaryRatePerMinute  int
}

// DefaultConfig matches the documented defaults: early-stop at 0.85 mean
// confidence, fallback candidate below 0.62 confidence or 10 qty-name
// lines.
func DefaultConfig() Config {
	return Config{
		EarlyStopConfidence:     0.85,
		FallbackConfidenceFloor: 0.62,
		FallbackMinLines:        10,
		VisionFallbackEnabled:   false,
		SecondaryRatePerMinute:  10,
	}
}

// Outcome is Strategy.Select's result: the chosen run, and, when the best
// primary run met a fallback trigger, which one, whether or not the
// secondary engine then ran.
type Outcome struct {
	Run            ocr.Run
	UsedSecondary  bool
	FallbackReason FallbackReason
	VariantsTried  int
}

// Strategy implements the OCRStrategy algorithm: run the preprocessing
// ladder through the primary engine, early-stop on high confidence, else
// pick the best run by (qty-name line count, mean confidence), and decide
// whether the optional secondary engine is worth invoking.
type Strategy struct {
	cfg          Config
	preprocessor *preprocess.Preprocessor
	primary      ocr.Engine
	secondary    ocr.Engine
	limiter      *rate.Limiter
}

// New constructs a Strategy. secondary may be nil, in which case the
// fallback step is always skipped regardless of configuration.
func New(cfg Config, pre *preprocess.Preprocessor, primary ocr.Engine, secondary ocr.Engine) *Strategy {
	s := &Strategy{cfg: cfg, preprocessor: pre, primary: primary, secondary: secondary}
	if cfg.SecondaryRatePerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SecondaryRatePerMinute)), 1)
	}
	return s
}

// Select runs the full strategy over a sanitised image and returns the
// chosen OCR run.
func (s *Strategy) Select(ctx context.Context, img imaging.Image) (Outcome, error) {
	variants, err := s.preprocessor.Variants(img)
	if err != nil {
		return Outcome{}, err
	}

	var best ocr.Run
	var bestLines int
	haveBest := false
	variantsTried := 0

	for _, v := range variants {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		default:
		}
		run, err := s.primary.Recognize(ctx, v)
		if err != nil {
			continue
		}
		variantsTried++
		lines := deckparse.CountQtyNameLines(run.PlainText)

		if run.MeanConfidence >= s.cfg.EarlyStopConfidence {
			return Outcome{Run: run, VariantsTried: variantsTried}, nil
		}
		if !haveBest || betterRun(lines, run.MeanConfidence, bestLines, best.MeanConfidence) {
			best = run
			bestLines = lines
			haveBest = true
		}
	}

	if !haveBest {
		return Outcome{VariantsTried: variantsTried}, nil
	}

	reason := s.fallbackReason(best, bestLines)
	if reason == FallbackNone {
		return Outcome{Run: best, VariantsTried: variantsTried}, nil
	}
	if s.secondary == nil || !s.cfg.VisionFallbackEnabled {
		return Outcome{Run: best, FallbackReason: reason, VariantsTried: variantsTried}, nil
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return Outcome{Run: best, FallbackReason: reason, VariantsTried: variantsTried}, nil
	}

	original := variantByKind(variants, preprocess.KindOriginal)
	secondaryRun, err := s.secondary.Recognize(ctx, original)
	variantsTried++
	if err != nil || len(secondaryRun.Spans) == 0 {
		return Outcome{Run: best, FallbackReason: reason, VariantsTried: variantsTried}, nil
	}
	return Outcome{Run: secondaryRun, UsedSecondary: true, FallbackReason: reason, VariantsTried: variantsTried}, nil
}

// betterRun implements the tie-break rule: higher qty-name line count
// wins, then higher mean confidence.
func betterRun(lines int, conf float64, bestLines int, bestConf float64) bool {
	if lines != bestLines {
		return lines > bestLines
	}
	return conf > bestConf
}

func (s *Strategy) fallbackReason(run ocr.Run, lines int) FallbackReason {
	if run.MeanConfidence < s.cfg.FallbackConfidenceFloor {
		return FallbackLowConfidence
	}
	if lines < s.cfg.FallbackMinLines {
		return FallbackMinLines
	}
	return FallbackNone
}

func variantByKind(variants []preprocess.Variant, kind preprocess.VariantKind) preprocess.Variant {
	for _, v := range variants {
		if v.Kind == kind {
			return v
		}
	}
	return variants[0]
}
