package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/sitemodel/models"
)

// Prompt budget.
const (
	maxPromptColors    = 8
	maxPromptFonts     = 3
	maxPromptHeadings  = 15
	maxPromptNavLabels = 10
	maxPromptMarkup    = 4000
	maxPromptMarkdown  = 4000
)

const systemPrompt = `You are an expert web developer who rebuilds websites as standalone HTML pages from a structured description of the original.

Rules:
- Reproduce the layout, spacing, colors and typography as closely as the description allows.
- Use semantic HTML5 and a single internal <style> block. Use CSS custom properties for the palette.
- Use CSS Grid for page layout and Flexbox for components. Make the page responsive.
- Recreate every listed component (buttons, forms, cards, navigation) with hover and focus states.
- Do not reference external scripts or stylesheets.
- Respond with ONLY the complete HTML document, starting with <!DOCTYPE html> and ending with </html>. No markdown fences or explanation.`

// screenshotInfo replaces the encoded image; the model never sees pixels.
type screenshotInfo struct {
	Viewport string `json:"viewport"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	SizeKB   int    `json:"size_kb"`
}

// promptContext is the trimmed SiteModel sent to the model.
type promptContext struct {
	URL          string                      `json:"url"`
	Title        string                      `json:"title"`
	Screenshots  []screenshotInfo            `json:"screenshots"`
	Headings     []models.Heading            `json:"headings"`
	Navigation   []string                    `json:"navigation"`
	Colors       []string                    `json:"colors"`
	Fonts        []string                    `json:"fonts"`
	Layout       models.LayoutAnalysis       `json:"layout"`
	Components   models.ComponentInventory   `json:"components"`
	Interactions models.InteractionInventory `json:"interactions"`
	Media        models.MediaInventory       `json:"media"`
	Meta         models.MetaInfo             `json:"meta"`
	Brand        models.BrandInfo            `json:"brand"`
	Responsive   []models.BreakpointState    `json:"responsive,omitempty"`
	Content      string                      `json:"content_markdown,omitempty"`
	BodyPreview  string                      `json:"body_html_preview"`
}

func newPromptContext(site *models.SiteModel) promptContext {
	shots := make([]screenshotInfo, 0, len(site.Screenshots))
	for _, s := range site.Screenshots {
		shots = append(shots, screenshotInfo{
			Viewport: s.Viewport,
			Width:    s.Width,
			Height:   s.Height,
			SizeKB:   len(s.EncodedImage) / 1024,
		})
	}
	sort.Slice(shots, func(i, j int) bool { return shots[i].Width > shots[j].Width })

	return promptContext{
		URL:          site.URL,
		Title:        site.Title,
		Screenshots:  shots,
		Headings:     head(site.Structure.Headings, maxPromptHeadings),
		Navigation:   head(site.Structure.NavigationLabels, maxPromptNavLabels),
		Colors:       head([]string(site.Colors), maxPromptColors),
		Fonts:        head([]string(site.Fonts), maxPromptFonts),
		Layout:       site.Layout,
		Components:   site.Components,
		Interactions: site.Interactions,
		Media:        site.Media,
		Meta:         site.Meta,
		Brand:        site.Brand,
		Responsive:   site.Responsive,
		Content:      clip(site.Content.Markdown, maxPromptMarkdown),
		BodyPreview:  clip(site.Structure.MainContentMarkup, maxPromptMarkup),
	}
}

func buildUserPrompt(site *models.SiteModel) (string, error) {
	ctxJSON, err := json.MarshalIndent(newPromptContext(site), "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rebuild this page: %s\n", site.URL)
	if site.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", site.Title)
	}
	b.WriteString("\nUse these exact colors and font families where they fit the design.\n\n")
	b.WriteString("Site description (JSON):\n")
	b.Write(ctxJSON)
	b.WriteString("\n")
	return b.String(), nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
