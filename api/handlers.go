package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/screen2deck/screen2deck/export"
	"github.com/screen2deck/screen2deck/job"
	"github.com/screen2deck/screen2deck/observability"
)

// Handler wires job.Manager and a card lookup behind gin routes.
type Handler struct {
	manager *job.Manager
	cards   export.CardLookup
	log     observability.Logger
}

// NewHandler constructs a Handler. cards is used only by the export
// endpoint, to turn a resolved CardID back into a display name. log may be
// nil, in which case export timing is not recorded.
func NewHandler(manager *job.Manager, cards export.CardLookup, log observability.Logger) *Handler {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Handler{manager: manager, cards: cards, log: log}
}

// Router builds the gin.Engine exposing POST /jobs, GET /jobs/:id, and
// GET /jobs/:id/export, fronted by a per-IP rate limiter.
func (h *Handler) Router(limiter *RateLimiter) *gin.Engine {
	r := gin.Default()
	r.Use(limiter.Middleware())

	jobs := r.Group("/jobs")
	{
		jobs.POST("", h.handleSubmit)
		jobs.GET("/:id", h.handleStatus)
		jobs.GET("/:id/export", h.handleExport)
	}
	return r
}

// handleSubmit implements POST /jobs: a multipart upload under the "image"
// field. HTTP request handlers never run OCR inline — Submit only
// sanitises, fingerprints, and enqueues; a Worker does the rest.
func (h *Handler) handleSubmit(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": string(job.ErrBadImage), "message": "missing \"image\" form field"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": string(job.ErrBadImage), "message": err.Error()})
		return
	}

	result, jobErr := h.manager.Submit(c.Request.Context(), raw)
	if jobErr != nil {
		c.JSON(statusForError(jobErr.Code), gin.H{"error": string(jobErr.Code), "message": jobErr.Message})
		return
	}

	status := http.StatusAccepted
	if result.Cached {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"job_id": result.JobID, "cached": result.Cached})
}

// handleStatus implements GET /jobs/:id.
func (h *Handler) handleStatus(c *gin.Context) {
	j, ok := h.manager.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// handleExport implements GET /jobs/:id/export?format=M|X|K|T.
func (h *Handler) handleExport(c *gin.Context) {
	j, ok := h.manager.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if j.State != job.StateCompleted || j.Result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "job_not_completed", "state": j.State})
		return
	}

	format := export.Format(c.DefaultQuery("format", string(export.FormatM)))
	start := time.Now()
	text, err := export.Render(j.Result.Deck, format, h.cards)
	h.log.Info("job.exported", observability.Int64(observability.MetricExportTime, time.Since(start).Milliseconds()), observability.String("format", string(format)))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": string(job.ErrExportInvalid), "message": err.Error()})
		return
	}
	c.String(http.StatusOK, text)
}

func statusForError(code job.ErrorCode) int {
	switch code {
	case job.ErrBadImage:
		return http.StatusBadRequest
	case job.ErrRateLimit:
		return http.StatusTooManyRequests
	case job.ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
