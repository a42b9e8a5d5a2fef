package main

import (
	"fmt"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

func errorText(fallback string, d *models.ErrorDetail) string {
	if d == nil {
		return fallback
	}
	if d.Stage != "" {
		return fmt.Sprintf("[%s at %s] %s", d.Code, d.Stage, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// summarize renders the parts of a site model an assistant reads first.
func summarize(site *models.SiteModel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\nCapture: %s (fingerprint %s)\n", site.Title, site.URL, site.CaptureID, site.Fingerprint)

	if len(site.Screenshots) > 0 {
		sb.WriteString("Screenshots:")
		for _, name := range []string{models.ViewportDesktop, models.ViewportTablet, models.ViewportMobile} {
			if s, ok := site.Screenshots[name]; ok {
				fmt.Fprintf(&sb, " %s %dx%d", name, s.Width, s.Height)
			}
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Colors", site.Colors)
	writeList(&sb, "Fonts", site.Fonts)
	writeList(&sb, "Navigation", site.Structure.NavigationLabels)

	if len(site.Structure.Headings) > 0 {
		sb.WriteString("\nHeadings:\n")
		for _, h := range site.Structure.Headings {
			fmt.Fprintf(&sb, "%s- %s\n", strings.Repeat("  ", max(h.Level-1, 0)), h.Text)
		}
	}

	c := site.Components
	fmt.Fprintf(&sb, "\nComponents: %d buttons, %d forms, %d cards, %d navigation, %d modals\n",
		len(c.Buttons), len(c.Forms), len(c.Cards), len(c.Navigation), len(c.Modals))
	fmt.Fprintf(&sb, "Layout: %dx%d, %d sections\n", site.Layout.PageWidth, site.Layout.PageHeight, len(site.Layout.Sections))
	fmt.Fprintf(&sb, "Click targets: %d, images: %d, videos: %d\n",
		len(site.Interactions.ClickTargets), len(site.Media.Images), len(site.Media.Videos))

	b := site.Brand
	switch b.Logo.Kind {
	case models.LogoImage:
		fmt.Fprintf(&sb, "Logo: image %s\n", b.Logo.Src)
	case models.LogoText:
		fmt.Fprintf(&sb, "Logo: %q\n", b.Logo.Text)
	}
	if b.BackgroundColor != "" {
		fmt.Fprintf(&sb, "Theme: background %s, text %s, dark %t, search %t\n", b.BackgroundColor, b.TextColor, b.IsDark, b.HasSearch)
	}
	for _, r := range site.Responsive {
		fmt.Fprintf(&sb, "At %dpx: %dx%d, nav visible %t, overflow %t\n", r.Width, r.PageWidth, r.PageHeight, r.NavVisible, r.Overflow)
	}

	if site.Content.Markdown != "" {
		sb.WriteString("\n---\n")
		sb.WriteString(site.Content.Markdown)
	}
	return sb.String()
}

func summarizeBatch(status models.BatchStatusResponse, urls []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %s (%d/%d done, %d failed)\n\n", status.ID, status.Status, status.Completed, status.Total, status.Failed)
	for i, r := range status.Results {
		label := fmt.Sprintf("[%d]", i+1)
		if i < len(urls) {
			label += " " + urls[i]
		}
		switch {
		case r == nil:
			fmt.Fprintf(&sb, "--- %s: pending ---\n\n", label)
		case r.Success && r.Site != nil:
			fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", label, summarize(r.Site))
		default:
			fmt.Fprintf(&sb, "--- %s FAILED: %s ---\n\n", label, errorText("unknown error", r.Error))
		}
	}
	return sb.String()
}

func writeList[S ~[]string](sb *strings.Builder, label string, items S) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(items, "; "))
}
