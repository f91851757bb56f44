package ocr

import (
	"context"
	"fmt"

	"github.com/screen2deck/screen2deck/preprocess"
)

var defaultEngine Engine = &noopEngine{}

// DefaultEngine returns the library's default OCR engine. Binding
// ocr/tesseract registers the Tesseract implementation here via its init
// function; until that package is imported, the noop engine is used.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine sets the library's default OCR engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

// RecognizeVariants runs the given engine over every variant. If the engine
// supports batch operation it is used; otherwise variants are recognised one
// at a time, in order. Every variant is recognised; there is no early stop,
// and the first error aborts the whole call.
func RecognizeVariants(ctx context.Context, engine Engine, variants []preprocess.Variant) ([]Run, error) {
	if b, ok := engine.(BatchEngine); ok {
		return b.RecognizeBatch(ctx, variants)
	}
	runs := make([]Run, 0, len(variants))
	for _, v := range variants {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		run, err := engine.Recognize(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("recognize variant %s: %w", v.Kind, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

type noopEngine struct{}

func (n noopEngine) Name() string { return "noop" }

func (n noopEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Run, error) {
	return Run{VariantKind: variant.Kind}, nil
}
