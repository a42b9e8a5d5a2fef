package llm

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

// GenerateResult is a generated page plus token usage.
type GenerateResult struct {
	HTML  string
	Usage *models.LLMUsage
}

// Generate asks the model for a standalone HTML page that reproduces site.
// Only the SiteModel is sent; screenshots are summarised, not uploaded.
func (c *Client) Generate(ctx context.Context, site *models.SiteModel, params Params) (*GenerateResult, error) {
	if site == nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "site model is required", nil)
	}
	userPrompt, err := buildUserPrompt(site)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to build prompt", err)
	}

	raw, usage, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, params)
	if err != nil {
		return nil, err
	}

	html := finishHTML(extractHTML(raw))
	if html == "" {
		return nil, models.NewScrapeError(models.ErrCodeLLMFailure, "LLM returned no HTML", nil)
	}
	return &GenerateResult{HTML: html, Usage: usage}, nil
}

const doctype = "<!DOCTYPE html>"

// extractHTML pulls the document out of a chat reply: a fenced html block
// wins, then anything from the doctype on, else the whole reply. Trailing
// text after </html> is dropped.
func extractHTML(reply string) string {
	var html string
	switch {
	case strings.Contains(reply, "```html"):
		start := strings.Index(reply, "```html") + len("```html")
		end := strings.Index(reply[start:], "```")
		if end < 0 {
			html = reply[start:]
		} else {
			html = reply[start : start+end]
		}
	case indexFold(reply, doctype) >= 0:
		html = reply[indexFold(reply, doctype):]
	default:
		html = reply
	}
	html = strings.TrimSpace(html)

	if i := strings.LastIndex(html, "</html>"); i >= 0 {
		html = html[:i+len("</html>")]
	}
	return html
}

// finishHTML guarantees a doctype and an html/head/body skeleton.
func finishHTML(html string) string {
	if html == "" {
		return ""
	}
	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<html") {
		return doctype + "\n<html>\n<head>\n<title>Generated page</title>\n</head>\n<body>\n" + html + "\n</body>\n</html>"
	}
	if indexFold(html, doctype) != 0 {
		html = doctype + "\n" + html
	}
	return html
}

// indexFold is an ASCII case-insensitive strings.Index.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
