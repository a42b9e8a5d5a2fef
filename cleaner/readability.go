package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid.
const minContentLength = 50

// extractArticle runs the Mozilla Readability algorithm on markup. The bool
// result reports whether readability found real content; when it did not,
// the returned Article carries markup unchanged and no metadata.
func extractArticle(markup string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, falling back to page markup",
			"url", sourceURL, "error", err,
		)
		return readability.Article{Content: markup}, false
	}

	article, err := readability.FromReader(strings.NewReader(markup), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, falling back to page markup",
			"url", sourceURL, "error", err,
		)
		return readability.Article{Content: markup}, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("readability: extracted content too short, falling back to page markup",
			"url", sourceURL, "length", len(article.TextContent),
		)
		fallback := article
		fallback.Content = markup
		return fallback, false
	}

	return article, true
}
