package http

import (
	"github.com/gin-gonic/gin"

	"lejio/tracking/internal/metrics"
)

func NewRouter(webhook *WebhookHandler, query *QueryHandler, health *HealthChecker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), CORS())

	health.Register(r)
	r.GET("/metrics", gin.WrapF(metrics.HandleMetrics))

	api := r.Group("/api/v1")
	webhook.Register(api)
	query.Register(api)

	return r
}
