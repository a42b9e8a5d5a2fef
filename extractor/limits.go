package extractor

// Limits bounds every list and text field the extractors produce.
type Limits struct {
	MaxColors          int
	MaxFonts           int
	MaxNavLabels       int
	MaxComponents      int
	MaxClickTargets    int
	MaxImages          int
	MaxVideos          int
	MainContentRunes   int
	FooterRunes        int
	ClickTextRunes     int
	ComponentTextRunes int
}

// DefaultLimits returns the standard caps.
func DefaultLimits() Limits {
	return Limits{
		MaxColors:          20,
		MaxFonts:           10,
		MaxNavLabels:       20,
		MaxComponents:      50,
		MaxClickTargets:    100,
		MaxImages:          100,
		MaxVideos:          20,
		MainContentRunes:   5000,
		FooterRunes:        1000,
		ClickTextRunes:     50,
		ComponentTextRunes: 100,
	}
}
