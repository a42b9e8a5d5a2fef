// Package api assembles the HTTP surface.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sitemodel/api/handler"
	"github.com/use-agent/sitemodel/api/middleware"
	"github.com/use-agent/sitemodel/cache"
	"github.com/use-agent/sitemodel/config"
	"github.com/use-agent/sitemodel/metrics"
	"github.com/use-agent/sitemodel/webhook"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Capturer  handler.Capturer
	Generator handler.Generator
	Stats     handler.StatsProvider
	Cache     *cache.Cache
	Batches   *handler.BatchStore
	Notifier  *webhook.Notifier
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
// Background janitors started here stop when ctx ends.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics
//	API:     Auth (if enabled) → RateLimit
//
// Health and /metrics are intentionally outside auth so monitoring probes
// always work.
func NewRouter(ctx context.Context, d Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(metrics.Middleware())

	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")

	// Health is public.
	v1.GET("/health", handler.Health(d.Stats, d.StartTime))

	// Protected group: auth, then rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Capture
	protected.POST("/scrape", handler.Scrape(d.Capturer, d.Cache))
	protected.POST("/images", handler.Images(d.Capturer, d.Cache))

	// Capture + HTML generation
	protected.POST("/clone", handler.Clone(d.Capturer, d.Generator, cfg.Generator))

	// Batch
	protected.POST("/batch/scrape", handler.PostBatch(d.Capturer, d.Batches, d.Notifier, cfg.Batch.Concurrency))
	protected.GET("/batch/:id", handler.GetBatch(d.Batches))

	return r
}
