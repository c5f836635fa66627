package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/time/rate"

	"github.com/teamup-app/teamup-backend/internal/api/http/response"
)

const maxLogsPerRequest = 500

type LogSink interface {
	Append(ctx context.Context, logs []json.RawMessage) (int, error)
}

// Handler accepts client error reports
type Handler struct {
	sink    LogSink
	limiter *rate.Limiter
}

// New creates a handler. A nil limiter disables rate limiting.
func New(sink LogSink, limiter *rate.Limiter) *Handler {
	return &Handler{sink: sink, limiter: limiter}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/errors", h.SaveErrors)
}

type saveErrorsRequest struct {
	Logs []json.RawMessage `json:"logs"`
}

func (r *saveErrorsRequest) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.Logs, validation.NotNil, validation.Length(0, maxLogsPerRequest)),
	)
}

// SaveErrors appends the posted logs to today's partition
func (h *Handler) SaveErrors(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	var req saveErrorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, "logs must be an array")
		return
	}

	saved, err := h.sink.Append(c.Request.Context(), req.Logs)
	if err != nil {
		response.RenderErr(c, "monitoring.save", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "saved": saved})
}
