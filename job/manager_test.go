package job

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func onePixelPNG() []byte {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 1, 1))
	for y := 0; y < 1; y++ {
		for x := 0; x < 1; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func newTestManager(t *testing.T, queueDepth int) *Manager {
	t.Helper()
	store := NewMemStore("", time.Hour)
	t.Cleanup(store.Close)
	cfg := DefaultConfig()
	if queueDepth > 0 {
		cfg.MaxQueueDepth = queueDepth
	}
	return NewManager(cfg, store, nil)
}

func TestSubmitRejectsBadImage(t *testing.T) {
	m := newTestManager(t, 0)
	_, jobErr := m.Submit(context.Background(), []byte("not an image"))
	if jobErr == nil || jobErr.Code != ErrBadImage {
		t.Fatalf("expected BAD_IMAGE, got %+v", jobErr)
	}
}

func TestSubmitIsIdempotentOnIdenticalBytes(t *testing.T) {
	m := newTestManager(t, 4)
	raw := onePixelPNG()

	first, err := m.Submit(context.Background(), raw)
	if err != nil {
		t.Fatalf("first submit failed: %+v", err)
	}
	if first.Cached {
		t.Fatal("first submit should not be reported as cached")
	}

	second, err := m.Submit(context.Background(), raw)
	if err != nil {
		t.Fatalf("second submit failed: %+v", err)
	}
	if !second.Cached {
		t.Fatal("second submit of identical bytes should be cached")
	}
	if second.JobID != first.JobID {
		t.Fatalf("expected same job id, got %s and %s", first.JobID, second.JobID)
	}
}

func TestSubmitReturnsRateLimitWhenQueueFull(t *testing.T) {
	m := newTestManager(t, 1)

	if _, err := m.Submit(context.Background(), onePixelPNG()); err != nil {
		t.Fatalf("first submit failed: %+v", err)
	}

	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{R: 99, G: 1, B: 1, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)

	_, jobErr := m.Submit(context.Background(), buf.Bytes())
	if jobErr == nil || jobErr.Code != ErrRateLimit {
		t.Fatalf("expected RATE_LIMIT once queue is full, got %+v", jobErr)
	}
}

func TestSubmitQueuesForDequeue(t *testing.T) {
	m := newTestManager(t, 4)
	result, err := m.Submit(context.Background(), onePixelPNG())
	if err != nil {
		t.Fatalf("submit failed: %+v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	id, derr := m.Dequeue(ctx)
	if derr != nil {
		t.Fatalf("dequeue failed: %v", derr)
	}
	if id != result.JobID {
		t.Fatalf("expected dequeued id %s, got %s", result.JobID, id)
	}

	if _, ok := m.TakeImage(id); !ok {
		t.Fatal("expected attached image to be available for dequeued job")
	}
	if _, ok := m.TakeImage(id); ok {
		t.Fatal("TakeImage should only hand out the image once")
	}
}

func TestReleaseFingerprintAllowsResubmission(t *testing.T) {
	m := newTestManager(t, 4)
	raw := onePixelPNG()

	first, err := m.Submit(context.Background(), raw)
	if err != nil {
		t.Fatalf("first submit failed: %+v", err)
	}

	fp, ok := m.Status(first.JobID)
	if !ok {
		t.Fatal("expected job to be findable")
	}
	m.ReleaseFingerprint(context.Background(), fp.Fingerprint)

	second, err := m.Submit(context.Background(), raw)
	if err != nil {
		t.Fatalf("resubmit after release failed: %+v", err)
	}
	if second.Cached {
		t.Fatal("resubmit after release should mint a fresh job")
	}
	if second.JobID == first.JobID {
		t.Fatal("expected a new job id after releasing the fingerprint")
	}
}
