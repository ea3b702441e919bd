package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine. metrics may be nil.
func NewRouter(h *Handler, metrics gin.HandlerFunc, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", h.Health)
	if metrics != nil {
		r.GET("/metrics", metrics)
	}

	api := r.Group("/api")
	{
		api.POST("/products/track", h.TrackProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/history", h.GetPriceHistory)
		api.POST("/alerts", h.CreateAlert)
		api.GET("/alerts/:recipient", h.ListAlerts)
		api.POST("/cycles", h.RunCycle)
	}
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
