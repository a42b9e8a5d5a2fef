package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Capture   CaptureConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Generator GeneratorConfig
	Batch     BatchConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent sessions).
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL for all sessions.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserAgent is set on every session before navigation.
	UserAgent string
}

// CaptureConfig holds the page stability protocol delays and every
// extraction cap.
type CaptureConfig struct {
	// NavigationTimeout bounds navigation plus network idle.
	NavigationTimeout time.Duration // default: 45s

	// IdleTimeout is how long the network must be quiet to count as idle.
	IdleTimeout time.Duration // default: 500ms

	// SettleDelay is waited after network idle, before scrolling.
	SettleDelay time.Duration // default: 2s

	// ScrollDelay is waited at the bottom of the page for lazy content.
	ScrollDelay time.Duration // default: 2s

	// FinalDelay is waited after scrolling back to the top.
	FinalDelay time.Duration // default: 1s

	// ViewportSettle is waited after each viewport change before capture.
	ViewportSettle time.Duration // default: 1s

	// ImageWait bounds the wait for every <img> to finish loading. Pages
	// that miss it are captured as they are.
	ImageWait time.Duration // default: 10s

	// Breakpoints are the widths measured for responsive behavior after the
	// screenshots. Empty disables the measurement.
	Breakpoints []int // default: 320,768,1024,1440

	// BreakpointSettle is waited after each breakpoint resize.
	BreakpointSettle time.Duration // default: 500ms

	// ConcurrentExtraction runs the four DOM extractors in parallel.
	ConcurrentExtraction bool // default: false

	MaxColors          int // default: 20
	MaxFonts           int // default: 10
	MaxNavLabels       int // default: 20
	MaxComponents      int // default: 50
	MaxClickTargets    int // default: 100
	MaxImages          int // default: 100
	MaxVideos          int // default: 20
	MainContentRunes   int // default: 5000
	FooterRunes        int // default: 1000
	ClickTextRunes     int // default: 50
	ComponentTextRunes int // default: 100
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the site model cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached models.
	MaxEntries int // default: 200

	// TTL is the age after which the sweeper drops an entry.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// GeneratorConfig holds the default OpenAI-compatible endpoint used by
// /api/v1/clone when the request does not bring its own key.
type GeneratorConfig struct {
	BaseURL     string        // default: "https://api.openai.com/v1"
	Model       string        // default: "gpt-4o"
	APIKey      string
	MaxTokens   int           // default: 16000
	Temperature float64       // default: 0.1
	Timeout     time.Duration // default: 180s
}

// BatchConfig controls batch capture jobs.
type BatchConfig struct {
	// Concurrency is the number of sessions a single batch may hold at once.
	Concurrency int // default: 2

	// JobTTL is how long finished jobs stay queryable.
	JobTTL time.Duration // default: 1h

	// WebhookSecret signs batch.completed deliveries when set.
	WebhookSecret string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SITEMODEL_HOST", "0.0.0.0"),
			Port: envIntOr("SITEMODEL_PORT", 8080),
			Mode: envOr("SITEMODEL_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SITEMODEL_HEADLESS", true),
			MaxPages:     envIntOr("SITEMODEL_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("SITEMODEL_PROXY"),
			NoSandbox:    envBoolOr("SITEMODEL_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SITEMODEL_BROWSER_BIN"),
			UserAgent:    envOr("SITEMODEL_USER_AGENT", DefaultUserAgent),
		},
		Capture: LoadCapture(),
		Auth: AuthConfig{
			Enabled: envBoolOr("SITEMODEL_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SITEMODEL_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SITEMODEL_RATE_RPS", 1.0),
			Burst:             envIntOr("SITEMODEL_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SITEMODEL_CACHE_MAX_ENTRIES", 200),
			TTL:        envDurationOr("SITEMODEL_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("SITEMODEL_LOG_LEVEL", "info"),
			Format: envOr("SITEMODEL_LOG_FORMAT", "json"),
		},
		Generator: GeneratorConfig{
			BaseURL:     envOr("SITEMODEL_LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:       envOr("SITEMODEL_LLM_MODEL", "gpt-4o"),
			APIKey:      os.Getenv("SITEMODEL_LLM_API_KEY"),
			MaxTokens:   envIntOr("SITEMODEL_LLM_MAX_TOKENS", 16000),
			Temperature: envFloatOr("SITEMODEL_LLM_TEMPERATURE", 0.1),
			Timeout:     envDurationOr("SITEMODEL_LLM_TIMEOUT", 180*time.Second),
		},
		Batch: BatchConfig{
			Concurrency:   envIntOr("SITEMODEL_BATCH_CONCURRENCY", 2),
			JobTTL:        envDurationOr("SITEMODEL_BATCH_TTL", time.Hour),
			WebhookSecret: os.Getenv("SITEMODEL_WEBHOOK_SECRET"),
		},
	}
}

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// LoadCapture reads only the capture section. The MCP binary and tests
// use it directly.
func LoadCapture() CaptureConfig {
	return CaptureConfig{
		NavigationTimeout:    envDurationOr("SITEMODEL_NAV_TIMEOUT", 45*time.Second),
		IdleTimeout:          envDurationOr("SITEMODEL_IDLE_TIMEOUT", 500*time.Millisecond),
		SettleDelay:          envDurationOr("SITEMODEL_SETTLE_DELAY", 2*time.Second),
		ScrollDelay:          envDurationOr("SITEMODEL_SCROLL_DELAY", 2*time.Second),
		FinalDelay:           envDurationOr("SITEMODEL_FINAL_DELAY", time.Second),
		ViewportSettle:       envDurationOr("SITEMODEL_VIEWPORT_SETTLE", time.Second),
		ImageWait:            envDurationOr("SITEMODEL_IMAGE_WAIT", 10*time.Second),
		Breakpoints:          envIntSliceOr("SITEMODEL_BREAKPOINTS", []int{320, 768, 1024, 1440}),
		BreakpointSettle:     envDurationOr("SITEMODEL_BREAKPOINT_SETTLE", 500*time.Millisecond),
		ConcurrentExtraction: envBoolOr("SITEMODEL_CONCURRENT_EXTRACTION", false),
		MaxColors:            envIntOr("SITEMODEL_MAX_COLORS", 20),
		MaxFonts:             envIntOr("SITEMODEL_MAX_FONTS", 10),
		MaxNavLabels:         envIntOr("SITEMODEL_MAX_NAV_LABELS", 20),
		MaxComponents:        envIntOr("SITEMODEL_MAX_COMPONENTS", 50),
		MaxClickTargets:      envIntOr("SITEMODEL_MAX_CLICK_TARGETS", 100),
		MaxImages:            envIntOr("SITEMODEL_MAX_IMAGES", 100),
		MaxVideos:            envIntOr("SITEMODEL_MAX_VIDEOS", 20),
		MainContentRunes:     envIntOr("SITEMODEL_MAIN_CONTENT_RUNES", 5000),
		FooterRunes:          envIntOr("SITEMODEL_FOOTER_RUNES", 1000),
		ClickTextRunes:       envIntOr("SITEMODEL_CLICK_TEXT_RUNES", 50),
		ComponentTextRunes:   envIntOr("SITEMODEL_COMPONENT_TEXT_RUNES", 100),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envIntSliceOr parses a comma-separated list of positive integers. A set
// but unparsable value such as "off" yields an empty list.
func envIntSliceOr(key string, fallback []int) []int {
	if os.Getenv(key) == "" {
		return fallback
	}
	var out []int
	for _, p := range envSliceOr(key, nil) {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
