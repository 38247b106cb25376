package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/provider"
)

type ingestor interface {
	Ingest(ctx context.Context, provider string, body []byte) (*domain.BatchResult, error)
}

type webhookResponse struct {
	Success      bool                  `json:"success"`
	Provider     string                `json:"provider"`
	Processed    int                   `json:"processed"`
	Errors       int                   `json:"errors"`
	Results      []domain.PointResult  `json:"results"`
	ErrorDetails []domain.PointFailure `json:"error_details,omitempty"`
}

type WebhookHandler struct {
	ingestor ingestor
	maxBytes int64
}

func NewWebhookHandler(ing ingestor, maxBytes int64) *WebhookHandler {
	return &WebhookHandler{ingestor: ing, maxBytes: maxBytes}
}

func (h *WebhookHandler) Register(r *gin.RouterGroup) {
	limit := BodyLimit(h.maxBytes)
	r.POST("/gps/webhook", limit, h.Ingest)
	r.POST("/gps/webhook/:provider", limit, h.Ingest)
}

func (h *WebhookHandler) Ingest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read request body"})
		return
	}

	batch, err := h.ingestor.Ingest(c.Request.Context(), providerOf(c), body)
	switch {
	case errors.Is(err, domain.ErrMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		log.WithError(err).Error("Webhook batch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, webhookResponse{
		Success:      true,
		Provider:     batch.Provider,
		Processed:    batch.ProcessedCount,
		Errors:       batch.ErrorCount,
		Results:      batch.Results,
		ErrorDetails: batch.Errors,
	})
}

// providerOf checks the path, then the query string, then X-Provider.
func providerOf(c *gin.Context) string {
	if p := c.Param("provider"); p != "" {
		return p
	}
	if p := c.Query("provider"); p != "" {
		return p
	}
	if p := c.GetHeader("X-Provider"); p != "" {
		return p
	}
	return provider.GenericName
}
