package models

// Viewport names.
const (
	ViewportDesktop = "desktop"
	ViewportTablet  = "tablet"
	ViewportMobile  = "mobile"
)

// ViewportSpec is a named screen geometry used for responsive captures.
type ViewportSpec struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Mobile turns on touch and mobile viewport meta handling.
	Mobile bool `json:"mobile,omitempty"`
}

// DefaultViewports returns the fixed capture sequence: desktop, tablet,
// mobile. A fresh slice is returned on every call.
func DefaultViewports() []ViewportSpec {
	return []ViewportSpec{
		{Name: ViewportDesktop, Width: 1920, Height: 1080},
		{Name: ViewportTablet, Width: 1024, Height: 768},
		{Name: ViewportMobile, Width: 375, Height: 812, Mobile: true},
	}
}

// SessionOptions are the per-request knobs for a rendering session.
type SessionOptions struct {
	// Stealth injects anti-automation-detection scripts before navigation.
	Stealth bool `json:"stealth,omitempty"`

	// BlockAds aborts requests to known ad and tracking domains.
	BlockAds bool `json:"block_ads,omitempty"`

	// RemoveOverlays dismisses cookie banners and modal overlays after the
	// page settles.
	RemoveOverlays bool `json:"remove_overlays,omitempty"`
}
