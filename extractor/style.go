package extractor

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

// Computed style properties read for the palette and font inventory. Border
// colors are read per side; the border-color shorthand computes to a
// space-separated list, not a single color.
var (
	colorProps = []string{
		"background-color", "color",
		"border-top-color", "border-right-color", "border-bottom-color", "border-left-color",
	}
	fontProp    = "font-family"
	motionProps = []string{"animation-name", "transition-duration"}
)

// StyleResult groups the outputs of ExtractStyles.
type StyleResult struct {
	Styles models.StyleSummary
	Colors models.ColorPalette
	Fonts  models.FontInventory
}

// ExtractStyles lists the document stylesheets and collects the distinct
// computed colors and font families of every element. Unreadable
// (cross-origin) sheets are recorded, not treated as failures.
func ExtractStyles(ctx context.Context, pq PageQuery, lim Limits) (StyleResult, error) {
	sheets, err := pq.Stylesheets(ctx)
	if err != nil {
		return StyleResult{}, &models.ExtractionError{Step: "stylesheets", Err: err}
	}
	if sheets == nil {
		sheets = []models.Stylesheet{}
	}

	els, err := pq.QueryAll(ctx, Query{
		Selector: "*",
		Styles:   styleQueryProps(),
	})
	if err != nil {
		return StyleResult{}, &models.ExtractionError{Step: "computed styles", Err: err}
	}

	colors := newOrderedSet(lim.MaxColors)
	fonts := newOrderedSet(lim.MaxFonts)
	animated := 0
	for _, el := range els {
		for _, prop := range colorProps {
			if v := el.Style(prop); visibleColor(v) {
				colors.add(v)
			}
		}
		fonts.add(el.Style(fontProp))
		if isAnimated(el) {
			animated++
		}
	}

	return StyleResult{
		Styles: models.StyleSummary{Stylesheets: sheets, AnimatedElements: animated},
		Colors: models.ColorPalette(colors.items),
		Fonts:  models.FontInventory(fonts.items),
	}, nil
}

func styleQueryProps() []string {
	props := make([]string, 0, len(colorProps)+1+len(motionProps))
	props = append(props, colorProps...)
	props = append(props, fontProp)
	return append(props, motionProps...)
}

// isAnimated reports a running keyframe animation or any transition with a
// non-zero duration.
func isAnimated(el Element) bool {
	for _, name := range strings.Split(el.Style("animation-name"), ",") {
		if name = strings.TrimSpace(name); name != "" && name != "none" {
			return true
		}
	}
	for _, d := range strings.Split(el.Style("transition-duration"), ",") {
		if d = strings.TrimSpace(d); d != "" && d != "0s" && d != "0ms" {
			return true
		}
	}
	return false
}

// orderedSet keeps the first `limit` distinct non-empty values in insertion
// order.
type orderedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{limit: limit, seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(v string) {
	if v == "" || s.full() {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}
