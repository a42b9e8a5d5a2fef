package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sitemodel/cache"
	"github.com/use-agent/sitemodel/models"
)

// smallSide is the width and height under which an image counts as small.
const smallSide = 100

// Images returns a handler for POST /api/v1/images.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Capture through the shared cache path.
//  3. Filter by size, order largest first, apply the limit.
func Images(cp Capturer, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ImagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
		req.Defaults()

		// ── 2. Capture ──────────────────────────────────────────────
		site, status, captureMs, err := fetchSite(c.Request.Context(), cp, cc, &req.ScrapeRequest)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			})
			return
		}

		// ── 3. Filter ───────────────────────────────────────────────
		c.JSON(http.StatusOK, models.ImagesResponse{
			Success:    true,
			URL:        req.URL,
			TotalFound: len(site.Media.Images),
			Images:     filterImages(site.Media.Images, &req),
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			},
			CacheStatus: status,
		})
	}
}

// filterImages keeps images meeting the size floor, largest area first
// (ties keep document order), capped at req.Limit. The input is not
// modified.
func filterImages(images []models.Image, req *models.ImagesRequest) []models.Image {
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		if img.Width < *req.MinWidth || img.Height < *req.MinHeight {
			continue
		}
		if !*req.IncludeSmall && (img.Width < smallSide || img.Height < smallSide) {
			continue
		}
		out = append(out, img)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Width*out[i].Height > out[j].Width*out[j].Height
	})
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out
}
