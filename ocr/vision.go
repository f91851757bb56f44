package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/net/http2"

	"github.com/screen2deck/screen2deck/preprocess"
)

// VisionEngine calls a remote vision-capable OCR API as the secondary
// engine. strategy.Strategy only reaches for it after the local Tesseract
// passes exhaust their budget, per §4.4: it must never be consulted for
// every job.
type VisionEngine struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
}

// NewVisionEngine constructs a VisionEngine against the given HTTP endpoint.
// The transport is upgraded to HTTP/2 where the server supports it, the same
// transport tuning the teacher applies to its outbound TLS connections.
func NewVisionEngine(endpoint, apiKey string) *VisionEngine {
	transport := &http.Transport{}
	_ = http2.ConfigureTransport(transport)
	return &VisionEngine{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		maxRetries: 3,
	}
}

func (e *VisionEngine) Name() string { return "vision-fallback" }

type visionRequest struct {
	ImageBase64 string `json:"image_base64"`
	Hint        string `json:"hint,omitempty"`
}

type visionSpan struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type visionResponse struct {
	PlainText string       `json:"plain_text"`
	Spans     []visionSpan `json:"spans"`
	LineCount int          `json:"line_count"`
}

// Recognize submits variant.Bytes to the remote API with exponential backoff
// on transient failures, per the retry policy shared with carddb's online
// client.
func (e *VisionEngine) Recognize(ctx context.Context, variant preprocess.Variant) (Run, error) {
	var out visionResponse
	op := func() error {
		resp, err := e.call(ctx, variant)
		if err != nil {
			return err
		}
		out = resp
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return Run{}, fmt.Errorf("vision engine: %w", err)
	}

	spans := make([]Span, 0, len(out.Spans))
	for _, s := range out.Spans {
		spans = append(spans, Span{
			Text:       s.Text,
			Confidence: s.Confidence,
			Box:        Box{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height},
		})
	}
	return ComputeRun(variant.Kind, out.PlainText, spans, out.LineCount), nil
}

func (e *VisionEngine) call(ctx context.Context, variant preprocess.Variant) (visionResponse, error) {
	body, err := json.Marshal(visionRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(variant.Bytes),
		Hint:        string(variant.Kind),
	})
	if err != nil {
		return visionResponse{}, backoff.Permanent(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return visionResponse{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return visionResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return visionResponse{}, fmt.Errorf("vision API status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return visionResponse{}, backoff.Permanent(fmt.Errorf("vision API status %d", resp.StatusCode))
	}

	var out visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return visionResponse{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}
