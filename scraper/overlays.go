package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/sitemodel/extractor"
)

// clickTimeout bounds each consent-button click attempt.
const clickTimeout = 2 * time.Second

// consentSelectors are tried in order; the first successful click wins.
var consentSelectors = []string{
	`button[id*="accept"]`,
	`button[class*="accept"]`,
	`button[aria-label*="Accept"]`,
	`button[aria-label*="Close"]`,
	`button[class*="close"]`,
	`[data-dismiss="modal"]`,
}

// consentPhrases match button labels when no selector matched.
var consentPhrases = []string{
	"accept", "allow", "ok", "got it", "continue", "agree", "no thanks",
	"maybe later", "i am over", "enter",
}

// dismissOverlays clicks the first consent or close control it finds,
// waits for the page to react, then strips remaining overlays. Every step
// is best-effort.
func dismissOverlays(ctx context.Context, page *rod.Page, settle time.Duration) {
	p := page.Context(ctx)

	clicked := false
	for _, sel := range consentSelectors {
		if clickFirstVisible(ctx, page, sel) {
			slog.Debug("overlay dismissed", "selector", sel)
			clicked = true
			break
		}
	}
	if !clicked {
		if res, err := p.Eval(clickByTextJS, consentPhrases); err == nil && res.Value.Bool() {
			slog.Debug("overlay dismissed by label")
			clicked = true
		}
	}
	if clicked {
		_ = extractor.Sleep(ctx, settle)
	}

	if _, err := p.Eval(removeOverlaysJS); err != nil {
		slog.Debug("overlay removal failed", "error", err)
	}
}

func clickFirstVisible(ctx context.Context, page *rod.Page, selector string) bool {
	clickCtx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()
	p := page.Context(clickCtx)

	// Elements does not wait for matches to appear.
	els, err := p.Elements(selector)
	if err != nil {
		return false
	}
	for _, el := range els {
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
			return true
		}
	}
	return false
}
