package models

import "time"

// SiteModel is the complete structured description of one captured page.
// It is built once per scrape by the pipeline and is not mutated afterwards;
// callers own it from that point on.
type SiteModel struct {
	// CaptureID uniquely identifies this capture.
	CaptureID string `json:"capture_id"`

	// URL is the page that was requested.
	URL string `json:"url"`

	// Title is document.title after the page settled.
	Title string `json:"title"`

	// CapturedAt is when the aggregator assembled the model.
	CapturedAt time.Time `json:"captured_at"`

	// Screenshots holds one artifact per viewport name.
	Screenshots map[string]ScreenshotArtifact `json:"screenshots"`

	Structure    StructuralTree       `json:"structure"`
	Styles       StyleSummary         `json:"styles"`
	Colors       ColorPalette         `json:"colors"`
	Fonts        FontInventory        `json:"fonts"`
	Layout       LayoutAnalysis       `json:"layout"`
	Components   ComponentInventory   `json:"components"`
	Interactions InteractionInventory `json:"interactions"`
	Meta         MetaInfo             `json:"meta"`
	Media        MediaInventory       `json:"media"`
	Content      ContentSummary       `json:"content"`
	Brand        BrandInfo            `json:"brand"`
	Performance  PerformanceMetrics   `json:"performance"`

	// Responsive holds the page state per breakpoint width, narrowest first.
	Responsive []BreakpointState `json:"responsive"`

	// Fingerprint is the hex SimHash of the structural tree. Two captures
	// of an unchanged page produce the same value.
	Fingerprint string `json:"fingerprint"`
}

// ScreenshotArtifact is a full-page PNG captured at one viewport.
type ScreenshotArtifact struct {
	Viewport string `json:"viewport"`

	// EncodedImage is the PNG encoded as standard base64.
	EncodedImage string `json:"encoded_image"`

	// Width and Height are the pixel dimensions of the decoded image.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StructuralTree is the cleaned DOM structure of the page.
type StructuralTree struct {
	FullMarkup        string    `json:"full_markup"`
	BodyMarkup        string    `json:"body_markup"`
	Headings          []Heading `json:"headings"`
	NavigationLabels  []string  `json:"navigation_labels"`
	MainContentMarkup string    `json:"main_content_markup"`
	FooterMarkup      string    `json:"footer_markup"`
}

// Heading is one h1–h6 element in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Tag   string `json:"tag"`
}

// Stylesheet kinds.
const (
	StylesheetExternal = "external"
	StylesheetInternal = "internal"
)

// StyleSummary lists every stylesheet attached to the document.
type StyleSummary struct {
	Stylesheets []Stylesheet `json:"stylesheets"`

	// AnimatedElements counts elements running a keyframe animation or
	// carrying a non-zero transition.
	AnimatedElements int `json:"animated_elements"`
}

// Stylesheet is one entry of document.styleSheets. Sheets the browser
// refuses to expose (cross-origin) carry AccessError and no rules.
type Stylesheet struct {
	Kind        string   `json:"kind"`
	Href        string   `json:"href,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	AccessError bool     `json:"access_error,omitempty"`
}

// ColorPalette is a deduplicated list of computed colors in first-seen order.
type ColorPalette []string

// FontInventory is a deduplicated list of computed font-family values in
// first-seen order.
type FontInventory []string

// LayoutAnalysis describes page dimensions and landmark geometry.
type LayoutAnalysis struct {
	PageWidth  int       `json:"page_width"`
	PageHeight int       `json:"page_height"`
	Sections   []Section `json:"sections"`
}

// Section is one measured landmark element.
type Section struct {
	Tag     string   `json:"tag"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Classes []string `json:"classes"`
}

// Rect is a bounding box relative to the viewport.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ComponentInventory groups recognised UI components by category.
type ComponentInventory struct {
	Buttons    []Component `json:"buttons"`
	Forms      []Component `json:"forms"`
	Cards      []Component `json:"cards"`
	Navigation []Component `json:"navigation"`
	Modals     []Component `json:"modals"`
}

// Component is the uniform descriptor for every component category.
type Component struct {
	Tag      string         `json:"tag"`
	Text     string         `json:"text"`
	Classes  []string       `json:"classes"`
	Style    ComponentStyle `json:"style"`
	Position Rect           `json:"position"`
}

// ComponentStyle is the fixed subset of computed style kept per component.
type ComponentStyle struct {
	BackgroundColor string `json:"background_color"`
	Color           string `json:"color"`
	BorderRadius    string `json:"border_radius"`
	Padding         string `json:"padding"`
	FontSize        string `json:"font_size"`
	FontWeight      string `json:"font_weight"`
}

// InteractionInventory lists clickable elements.
type InteractionInventory struct {
	ClickTargets []ClickTarget `json:"click_targets"`
}

// ClickTarget is one clickable element.
type ClickTarget struct {
	Tag     string   `json:"tag"`
	Text    string   `json:"text"`
	Classes []string `json:"classes"`
	Href    string   `json:"href"`
}

// MetaInfo maps meta tag name/property to content.
type MetaInfo map[string]string

// MediaInventory lists images and videos referenced by the page.
type MediaInventory struct {
	Images []Image `json:"images"`
	Videos []Video `json:"videos"`
}

// Image sources.
const (
	ImageContextElement    = "img-element"
	ImageContextSource     = "source-element"
	ImageContextBackground = "css-background"
)

// Image is one image reference with an absolute source URL. Width and
// Height are the intrinsic size when the browser reported one, otherwise
// the declared or rendered size; 0 means unknown.
type Image struct {
	Src     string `json:"src"`
	Alt     string `json:"alt,omitempty"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format,omitempty"`
	Context string `json:"context"`
}

// Video is a <video> with absolute source and poster URLs.
type Video struct {
	Src    string `json:"src,omitempty"`
	Poster string `json:"poster,omitempty"`
}

// ContentSummary is a compact, generator-friendly view of the main content.
type ContentSummary struct {
	Markdown      string `json:"markdown"`
	Excerpt       string `json:"excerpt,omitempty"`
	Language      string `json:"language,omitempty"`
	SiteName      string `json:"site_name,omitempty"`
	Byline        string `json:"byline,omitempty"`
	TokenEstimate int    `json:"token_estimate"`
}

// Logo kinds.
const (
	LogoImage = "image"
	LogoText  = "text"
)

// Logo is the detected site logo. Kind is empty when nothing was found.
type Logo struct {
	Kind string `json:"kind,omitempty"`
	Src  string `json:"src,omitempty"`
	Alt  string `json:"alt,omitempty"`
	Text string `json:"text,omitempty"`
}

// BrandInfo is the page identity read from the body and header.
type BrandInfo struct {
	Logo            Logo   `json:"logo"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontFamily      string `json:"font_family"`
	IsDark          bool   `json:"is_dark"`
	HasSearch       bool   `json:"has_search"`
}

// PerformanceMetrics comes from the navigation timing entry, in
// milliseconds since navigation start.
type PerformanceMetrics struct {
	TTFBMs             float64 `json:"ttfb_ms"`
	DOMContentLoadedMs float64 `json:"dom_content_loaded_ms"`
	LoadMs             float64 `json:"load_ms"`
	TransferBytes      int64   `json:"transfer_bytes"`
	ResourceCount      int     `json:"resource_count"`
}

// BreakpointState is the page state at one viewport width.
type BreakpointState struct {
	Width      int  `json:"width"`
	PageWidth  int  `json:"page_width"`
	PageHeight int  `json:"page_height"`
	NavVisible bool `json:"nav_visible"`

	// Overflow reports content wider than the viewport.
	Overflow bool `json:"overflow"`
}
