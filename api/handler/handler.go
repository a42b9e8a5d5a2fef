// Package handler implements the HTTP endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sitemodel/llm"
	"github.com/use-agent/sitemodel/models"
)

// Capturer runs one capture. *pipeline.Pipeline satisfies it.
type Capturer interface {
	Scrape(ctx context.Context, url string, opts models.SessionOptions) (*models.SiteModel, error)
}

// Generator writes HTML from a SiteModel. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, site *models.SiteModel, params llm.Params) (*llm.GenerateResult, error)
}

// StatsProvider reports browser pool utilisation. *scraper.Scraper
// satisfies it.
type StatsProvider interface {
	Stats() models.PoolStats
}

// errorDetail converts err to its API form. A deadline anywhere in the
// chain is reported as a timeout whatever stage it interrupted.
func errorDetail(err error) *models.ErrorDetail {
	d := models.Detail(err)
	if errors.Is(err, context.DeadlineExceeded) {
		d.Code = models.ErrCodeTimeout
	}
	return d
}

// respondError maps err to the correct HTTP status code and writes a
// structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	d := errorDetail(err)
	c.JSON(mapErrorToStatus(d.Code), models.ScrapeResponse{
		Success: false,
		Error:   d,
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeCapture, models.ErrCodeLLMFailure:
		return http.StatusBadGateway // 502
	case models.ErrCodeExtraction:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized, models.ErrCodeLLMAuthFailure:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited, models.ErrCodeLLMRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

// invalidInput writes a 400 for a request that failed binding.
func invalidInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ScrapeResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}
