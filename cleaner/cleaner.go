// Package cleaner reduces a captured page to a compact Markdown summary of
// its main content.
package cleaner

import (
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/sitemodel/models"
)

// maxMarkdownRunes caps the Markdown kept in a summary.
const maxMarkdownRunes = 20000

// Cleaner turns page markup into a ContentSummary:
//
//	Stage 1 (readability): extract main content and article metadata
//	Stage 2 (markdown):    convert the extracted HTML to Markdown
//
// The converter is created once and reused across all requests (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Summarize never fails: when readability or conversion break down the
// summary degrades to whatever could be recovered.
func (c *Cleaner) Summarize(markup string, sourceURL string) models.ContentSummary {
	// ── 1. Readability ──────────────────────────────────────────────
	article, _ := extractArticle(markup, sourceURL)

	// ── 2. Markdown ─────────────────────────────────────────────────
	md, err := toMarkdown(c.mdConverter, article.Content, sourceURL)
	if err != nil {
		md = strings.TrimSpace(article.TextContent)
	}
	md = strings.TrimSpace(md)
	if utf8.RuneCountInString(md) > maxMarkdownRunes {
		md = string([]rune(md)[:maxMarkdownRunes])
	}

	return models.ContentSummary{
		Markdown:      md,
		Excerpt:       strings.TrimSpace(article.Excerpt),
		Language:      article.Language,
		SiteName:      article.SiteName,
		Byline:        strings.TrimSpace(article.Byline),
		TokenEstimate: EstimateTokens(md),
	}
}
