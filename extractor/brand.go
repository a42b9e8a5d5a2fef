package extractor

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

// Logo candidates, tried in order. The first image with a resolved source
// wins; text candidates are used only when no image matched.
var (
	logoImageSelectors = []string{
		`img[alt*="logo" i]`, `img[src*="logo" i]`, `.logo img`, `.brand img`,
		`nav img`, `.navbar-brand img`, `.site-logo img`, `.header-logo img`,
	}
	logoTextSelectors = []string{`.logo`, `.brand`, `h1`, `.site-title`}
)

const (
	searchSelector = `input[type="search"], input[name="q"], [role="search"], .search`

	// defaultBackground stands in for a body without a painted background.
	defaultBackground = "rgb(255, 255, 255)"

	// darkLuminance is the relative luminance below which a background
	// counts as dark.
	darkLuminance = 0.2
)

// DetectBrand reads the body colors, the logo and whether the page offers a
// search field. When no logo is found the title becomes a text logo.
func DetectBrand(ctx context.Context, pq PageQuery, title string, lim Limits) (models.BrandInfo, error) {
	var info models.BrandInfo

	bodies, err := pq.QueryAll(ctx, Query{
		Selector: "body",
		Styles:   []string{"background-color", "color", "font-family"},
		Limit:    1,
	})
	if err != nil {
		return info, &models.ExtractionError{Step: "brand colors", Err: err}
	}
	info.BackgroundColor = defaultBackground
	if len(bodies) > 0 {
		body := bodies[0]
		if bg := body.Style("background-color"); visibleColor(bg) {
			info.BackgroundColor = bg
		}
		info.TextColor = body.Style("color")
		info.FontFamily = body.Style("font-family")
	}
	if c, ok := parseColor(info.BackgroundColor); ok {
		info.IsDark = luminance(c) < darkLuminance
	}

	if info.Logo, err = findLogo(ctx, pq, lim); err != nil {
		return info, err
	}
	if info.Logo.Kind == "" && strings.TrimSpace(title) != "" {
		info.Logo = models.Logo{Kind: models.LogoText, Text: strings.TrimSpace(title)}
	}

	search, err := pq.QueryAll(ctx, Query{Selector: searchSelector, Limit: 1})
	if err != nil {
		return info, &models.ExtractionError{Step: "search", Err: err}
	}
	info.HasSearch = len(search) > 0
	return info, nil
}

func findLogo(ctx context.Context, pq PageQuery, lim Limits) (models.Logo, error) {
	for _, sel := range logoImageSelectors {
		els, err := pq.QueryAll(ctx, Query{
			Selector: sel,
			Attrs:    []string{"alt"},
			Props:    []string{"src"},
			Limit:    1,
		})
		if err != nil {
			return models.Logo{}, &models.ExtractionError{Step: "logo", Err: err}
		}
		if len(els) > 0 && els[0].Prop("src") != "" {
			alt, _ := els[0].Attr("alt")
			return models.Logo{Kind: models.LogoImage, Src: els[0].Prop("src"), Alt: strings.TrimSpace(alt)}, nil
		}
	}
	for _, sel := range logoTextSelectors {
		els, err := pq.QueryAll(ctx, Query{Selector: sel, Text: true, Limit: 1})
		if err != nil {
			return models.Logo{}, &models.ExtractionError{Step: "logo", Err: err}
		}
		if len(els) == 0 {
			continue
		}
		if text := collapseSpace(els[0].Text); text != "" {
			return models.Logo{Kind: models.LogoText, Text: truncateRunes(text, lim.ComponentTextRunes)}, nil
		}
	}
	return models.Logo{}, nil
}
