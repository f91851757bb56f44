package api

import (
	"bytes"
	"encoding/json"
	stdimage "image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/job"
)

func decodeJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode json: %v (body: %s)", err, data)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

type emptyCardLookup struct{}

func (emptyCardLookup) Card(string) (corpus.Card, bool) { return corpus.Card{}, false }

func onePixelPNG() []byte {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 1, 1))
	for y := 0; y < 1; y++ {
		for x := 0; x < 1; x++ {
			img.Set(x, y, color.RGBA{R: 5, G: 5, B: 5, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func multipartImageBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "deck.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := job.NewMemStore("", time.Hour)
	t.Cleanup(store.Close)
	mgr := job.NewManager(job.DefaultConfig(), store, nil)
	return NewHandler(mgr, emptyCardLookup{}, nil)
}

func TestSubmitAcceptsValidImage(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router(NewRateLimiter(600, 50))

	body, contentType := multipartImageBody(t, "image", onePixelPNG())
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitRejectsMissingImageField(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router(NewRateLimiter(600, 50))

	body, contentType := multipartImageBody(t, "not_image", onePixelPNG())
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatusReturnsNotFoundForUnknownJob(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router(NewRateLimiter(600, 50))

	req := httptest.NewRequest(http.MethodGet, "/jobs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExportReturnsConflictBeforeCompletion(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router(NewRateLimiter(600, 50))

	body, contentType := multipartImageBody(t, "image", onePixelPNG())
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var submitted struct {
		JobID string `json:"job_id"`
	}
	decodeJSON(t, rec.Body.Bytes(), &submitted)

	exportReq := httptest.NewRequest(http.MethodGet, "/jobs/"+submitted.JobID+"/export?format=X", nil)
	exportRec := httptest.NewRecorder()
	router.ServeHTTP(exportRec, exportReq)

	if exportRec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before job completes, got %d", exportRec.Code)
	}
}

func TestRateLimiterBlocksAfterBurstExhausted(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router(NewRateLimiter(60, 1))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst exhausted, got %d", last)
	}
}
