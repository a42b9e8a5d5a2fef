package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sitemodel/cache"
	"github.com/use-agent/sitemodel/models"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when max_age is set.
//  3. Capturer.Scrape under the request timeout, then cache store   (records capture_ms)
//  4. Strip screenshots if not wanted, return 200.
func Scrape(cp Capturer, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
		req.Defaults()

		// ── 2–3. Cache lookup, then capture ─────────────────────────
		site, status, captureMs, err := fetchSite(c.Request.Context(), cp, cc, &req)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			})
			return
		}

		// ── 4. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success: true,
			Site:    presentSite(site, *req.IncludeScreenshots),
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			},
			CacheStatus: status,
		})
	}
}

// fetchSite serves req from cc when max_age allows, otherwise captures and
// stores the fresh model. status is "hit", "miss", or "" when caching was
// not requested.
func fetchSite(ctx context.Context, cp Capturer, cc *cache.Cache, req *models.ScrapeRequest) (*models.SiteModel, string, int64, error) {
	useCache := cc != nil && req.MaxAge > 0
	key := cache.Key(req.URL, req.SessionOptions())
	if useCache {
		if cached, hit := cc.Get(key, req.MaxAge); hit {
			return cached, "hit", 0, nil
		}
	}

	site, captureMs, err := capture(ctx, cp, req)
	if err != nil {
		return nil, "", captureMs, err
	}
	if !useCache {
		return site, "", captureMs, nil
	}
	cc.Set(key, site)
	return site, "miss", captureMs, nil
}

// capture runs cp under the request timeout.
func capture(ctx context.Context, cp Capturer, req *models.ScrapeRequest) (*models.SiteModel, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	start := time.Now()
	site, err := cp.Scrape(ctx, req.URL, req.SessionOptions())
	return site, time.Since(start).Milliseconds(), err
}

// presentSite returns site, or a copy without encoded screenshots when the
// caller opted out of them. The stored model is never modified.
func presentSite(site *models.SiteModel, includeScreenshots bool) *models.SiteModel {
	if includeScreenshots || site == nil {
		return site
	}
	out := *site
	out.Screenshots = make(map[string]models.ScreenshotArtifact, len(site.Screenshots))
	for k, s := range site.Screenshots {
		s.EncodedImage = ""
		out.Screenshots[k] = s
	}
	return &out
}
