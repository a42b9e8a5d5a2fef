package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the capture completed without errors.
	Success bool `json:"success"`

	// Site is the assembled model. Nil when Success is false.
	Site *SiteModel `json:"site,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// CloneResponse is the response for POST /api/v1/clone.
type CloneResponse struct {
	Success bool `json:"success"`

	// HTML is the generated standalone document.
	HTML string `json:"html,omitempty"`

	// Site is the model the document was generated from.
	Site *SiteModel `json:"site,omitempty"`

	Timing   TimingInfo   `json:"timing"`
	LLMUsage *LLMUsage    `json:"llm_usage,omitempty"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// ImagesResponse is the response for POST /api/v1/images.
type ImagesResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`

	// TotalFound counts images before filtering.
	TotalFound int `json:"total_found"`

	// Images are the kept images, largest first.
	Images []Image `json:"images"`

	Timing      TimingInfo   `json:"timing"`
	CacheStatus string       `json:"cache_status,omitempty"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// LLMUsage reports token consumption from the LLM call.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// CaptureMs is the time spent in the capture pipeline.
	CaptureMs int64 `json:"capture_ms"`

	// GenerationMs is the time spent waiting for the LLM (clone only).
	GenerationMs int64 `json:"generation_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
	BrowserPID  int `json:"browser_pid"`
}
