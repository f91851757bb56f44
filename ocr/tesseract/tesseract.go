// Package tesseract implements ocr.Engine and ocr.BatchEngine as a binding
// to the local Tesseract library via gosseract, the primary OCR engine
// called out in the ambient OCR stack.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/screen2deck/screen2deck/ocr"
	"github.com/screen2deck/screen2deck/preprocess"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine and ocr.BatchEngine using the gosseract
// client as the primary OCR provider.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// NewEngine constructs a Tesseract-backed OCR engine recognising English by
// default.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient, languages: []string{"eng"}}
}

// WithLanguages overrides the recognition languages passed to Tesseract.
func (e *Engine) WithLanguages(langs ...string) *Engine {
	e.languages = langs
	return e
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single preprocessed variant.
func (e *Engine) Recognize(ctx context.Context, variant preprocess.Variant) (ocr.Run, error) {
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(c, variant)
}

// RecognizeBatch processes multiple variants using a single client instance
// to amortise the cost of loading Tesseract's language data once per job
// instead of once per variant. Variants are processed sequentially because
// strategy.Strategy needs results in order to evaluate its early-stop rule.
func (e *Engine) RecognizeBatch(ctx context.Context, variants []preprocess.Variant) ([]ocr.Run, error) {
	c := e.clientFactory()
	defer c.Close()
	runs := make([]ocr.Run, 0, len(variants))
	for _, v := range variants {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		run, err := e.recognizeWithClient(c, v)
		if err != nil {
			return nil, fmt.Errorf("recognize variant %s: %w", v.Kind, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, variant preprocess.Variant) (ocr.Run, error) {
	if err := c.SetImageFromBytes(variant.Bytes); err != nil {
		return ocr.Run{}, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return ocr.Run{}, fmt.Errorf("set languages: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Run{}, fmt.Errorf("recognize text: %w", err)
	}

	spans := extractSpans(c)
	lineCount := countLines(c)
	return ocr.ComputeRun(variant.Kind, strings.TrimSpace(text), spans, lineCount), nil
}

func extractSpans(c *gosseract.Client) []ocr.Span {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	spans := make([]ocr.Span, 0, len(boxes))
	for _, b := range boxes {
		spans = append(spans, ocr.Span{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Box: ocr.Box{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
		})
	}
	return spans
}

func countLines(c *gosseract.Client) int {
	lines, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return 0
	}
	return len(lines)
}
