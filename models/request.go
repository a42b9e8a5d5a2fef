package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to capture. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the whole capture
	// (navigation + screenshots + extraction).
	// Default: 120. Max: 300.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=300"`

	// Stealth enables anti-bot-detection evasions (e.g. navigator.webdriver masking).
	Stealth bool `json:"stealth,omitempty"`

	// BlockAds aborts requests to known ad and tracking domains.
	BlockAds bool `json:"block_ads,omitempty"`

	// RemoveOverlays dismisses cookie banners and modal overlays before capture.
	RemoveOverlays bool `json:"remove_overlays,omitempty"`

	// IncludeScreenshots controls whether base64 screenshots are returned.
	// They are always captured. Default: true.
	IncludeScreenshots *bool `json:"include_screenshots,omitempty"`

	// MaxAge enables caching. When > 0, a cached model younger than MaxAge
	// milliseconds is returned instead of capturing again.
	MaxAge int64 `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 120
	}
	if r.IncludeScreenshots == nil {
		t := true
		r.IncludeScreenshots = &t
	}
}

// SessionOptions returns the rendering session knobs carried by the request.
func (r *ScrapeRequest) SessionOptions() SessionOptions {
	return SessionOptions{
		Stealth:        r.Stealth,
		BlockAds:       r.BlockAds,
		RemoveOverlays: r.RemoveOverlays,
	}
}

// CloneRequest is the payload for POST /api/v1/clone. It captures the page
// and hands the resulting SiteModel to an OpenAI-compatible model that
// writes a standalone HTML replica.
type CloneRequest struct {
	ScrapeRequest

	// LLMAPIKey is the caller's own API key (BYOK). Falls back to the
	// server-configured key when empty.
	LLMAPIKey string `json:"llm_api_key,omitempty"`

	// LLMModel is the model used for generation.
	LLMModel string `json:"llm_model,omitempty"`

	// LLMBaseURL is the base URL for the LLM API.
	// Supports any OpenAI-compatible API (DeepSeek, Groq, Azure, etc.).
	LLMBaseURL string `json:"llm_base_url,omitempty" binding:"omitempty,url"`
}

// ImagesRequest is the payload for POST /api/v1/images. It captures the
// page like a scrape and returns only the image inventory, filtered by size.
type ImagesRequest struct {
	ScrapeRequest

	// Limit caps the returned images. Default: 100.
	Limit int `json:"limit,omitempty" binding:"omitempty,min=1,max=500"`

	// MinWidth and MinHeight drop smaller images, including those of
	// unknown size. Default: 10 each.
	MinWidth  *int `json:"min_width,omitempty" binding:"omitempty,min=0"`
	MinHeight *int `json:"min_height,omitempty" binding:"omitempty,min=0"`

	// IncludeSmall keeps images under 100x100. Default: true.
	IncludeSmall *bool `json:"include_small,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ImagesRequest) Defaults() {
	r.ScrapeRequest.Defaults()
	if r.Limit == 0 {
		r.Limit = 100
	}
	if r.MinWidth == nil {
		w := 10
		r.MinWidth = &w
	}
	if r.MinHeight == nil {
		h := 10
		r.MinHeight = &h
	}
	if r.IncludeSmall == nil {
		t := true
		r.IncludeSmall = &t
	}
}
