package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sitemodel/config"
	"github.com/use-agent/sitemodel/llm"
	"github.com/use-agent/sitemodel/models"
)

// Clone returns a handler for POST /api/v1/clone.
//
// Orchestration flow:
//  1. Parse & validate request, resolve LLM params (request → server default).
//  2. Capture the page                             (records capture_ms)
//  3. Generator.Generate from the SiteModel only   (records generation_ms)
//  4. Return HTML, the model and token usage.
func Clone(cp Capturer, gen Generator, gcfg config.GeneratorConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.CloneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err)
			return
		}
		req.Defaults()

		params := llm.Params{
			APIKey:      firstNonEmpty(req.LLMAPIKey, gcfg.APIKey),
			Model:       firstNonEmpty(req.LLMModel, gcfg.Model),
			BaseURL:     firstNonEmpty(req.LLMBaseURL, gcfg.BaseURL),
			MaxTokens:   gcfg.MaxTokens,
			Temperature: gcfg.Temperature,
		}
		if params.APIKey == "" {
			invalidInput(c, models.NewScrapeError(models.ErrCodeInvalidInput,
				"llm_api_key is required when the server has no default key", nil))
			return
		}

		// ── 2. Capture ──────────────────────────────────────────────
		site, captureMs, err := capture(c.Request.Context(), cp, &req.ScrapeRequest)
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				CaptureMs: captureMs,
			})
			return
		}

		// ── 3. Generate ─────────────────────────────────────────────
		genStart := time.Now()
		res, err := generate(c.Request.Context(), gen, site, params, gcfg.Timeout)
		generationMs := time.Since(genStart).Milliseconds()
		timing := models.TimingInfo{
			TotalMs:      time.Since(totalStart).Milliseconds(),
			CaptureMs:    captureMs,
			GenerationMs: generationMs,
		}
		if err != nil {
			d := errorDetail(err)
			c.JSON(mapErrorToStatus(d.Code), models.CloneResponse{
				Success: false,
				Site:    presentSite(site, *req.IncludeScreenshots),
				Timing:  timing,
				Error:   d,
			})
			return
		}

		// ── 4. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.CloneResponse{
			Success:  true,
			HTML:     res.HTML,
			Site:     presentSite(site, *req.IncludeScreenshots),
			Timing:   timing,
			LLMUsage: res.Usage,
		})
	}
}

func generate(ctx context.Context, gen Generator, site *models.SiteModel, params llm.Params, timeout time.Duration) (*llm.GenerateResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return gen.Generate(ctx, site, params)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
