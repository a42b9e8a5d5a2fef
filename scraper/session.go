package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/sitemodel/extractor"
	"github.com/use-agent/sitemodel/models"
	"github.com/ysmood/gson"
)

// Session is one exclusively owned browser tab holding a settled page.
// It implements extractor.PageQuery and extractor.Viewporter. A Session is
// used by one pipeline run; Close must be called exactly when the run ends,
// further calls are no-ops.
type Session struct {
	scraper *Scraper
	page    *rod.Page
	url     string

	router        *rod.HijackRouter
	removeStealth func() error

	// failed marks a session that saw a page error; it counts against the
	// tab's health when the session closes.
	failed    atomic.Bool
	closeOnce sync.Once
}

var (
	_ extractor.PageQuery  = (*Session)(nil)
	_ extractor.Viewporter = (*Session)(nil)
)

// Open acquires a tab, navigates to rawURL and runs the stability protocol.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire page           – borrow a tab from the pool (or create one)
//  2. Identity               – user agent + extra headers
//  3. Stealth injection      – before navigation so it applies to the new document
//  4. Ad blocking            – hijack router, before navigation
//  5. Navigate + idle        – bounded by NavigationTimeout
//  6. Settle + scroll        – trigger lazy content, return to top
//  7. Overlays               – optional consent/modal dismissal
//
// On any failure the tab is discarded and the pool slot released.
func (s *Scraper) Open(ctx context.Context, rawURL string, opts models.SessionOptions) (*Session, error) {
	// ── 1. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		s.pagePool.Put(nil)
		s.activePages.Add(-1)
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}
	sess := &Session{scraper: s, page: page, url: rawURL}

	// ── 2. Identity ───────────────────────────────────────────────────
	if ua := s.browserCfg.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: "en-US,en;q=0.9",
		}); err != nil {
			slog.Warn("user agent override failed", "error", err)
		}
	}
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{"Accept-Language": gson.New("en-US,en;q=0.9")},
	}.Call(page)

	// ── 3. Stealth injection ──────────────────────────────────────────
	if opts.Stealth {
		remove, evalErr := page.EvalOnNewDocument(stealth.JS)
		if evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		} else {
			sess.removeStealth = remove
		}
	}

	// ── 4. Ad blocking ────────────────────────────────────────────────
	if opts.BlockAds {
		sess.router = mountAdBlock(page)
	}

	// ── 5. Navigate + idle ────────────────────────────────────────────
	if err := sess.navigate(ctx); err != nil {
		sess.discard()
		return nil, err
	}

	// ── 6. Settle + scroll ────────────────────────────────────────────
	if err := sess.stabilize(ctx); err != nil {
		sess.discard()
		return nil, &models.NavigationError{URL: rawURL, Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	// ── 7. Overlays ───────────────────────────────────────────────────
	if opts.RemoveOverlays {
		dismissOverlays(ctx, page, s.captureCfg.FinalDelay)
	}

	return sess, nil
}

// navigate loads the URL and waits for network idle, or DOM stability
// when the hijack router is mounted. The idle waiter is registered before
// Navigate so in-flight requests are observed.
func (s *Session) navigate(ctx context.Context) error {
	cfg := s.scraper.captureCfg
	navCtx, cancel := context.WithTimeout(ctx, cfg.NavigationTimeout)
	defer cancel()
	p := s.page.Context(navCtx)

	// WaitRequestIdle conflicts with HijackRequests on Chromium 145+.
	var waitIdle func()
	if s.router == nil {
		waitIdle = p.WaitRequestIdle(cfg.IdleTimeout, nil, nil, []proto.NetworkResourceType{
			proto.NetworkResourceTypeWebSocket,
			proto.NetworkResourceTypeEventSource,
			proto.NetworkResourceTypeMedia,
		})
	}

	if err := p.Navigate(s.url); err != nil {
		return categorizeNavError(s.url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeNavError(s.url, err)
	}

	if waitIdle != nil {
		waitIdle()
	} else if err := p.WaitDOMStable(cfg.IdleTimeout, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", s.url,
			"error", err,
		)
	}

	if err := navCtx.Err(); err != nil {
		return categorizeNavError(s.url, err)
	}
	return nil
}

// stabilize waits for late content: settle, scroll to bottom, wait, scroll
// back to top, wait, then give images a bounded chance to finish.
func (s *Session) stabilize(ctx context.Context) error {
	cfg := s.scraper.captureCfg
	p := s.page.Context(ctx)

	if err := extractor.Sleep(ctx, cfg.SettleDelay); err != nil {
		return err
	}
	if _, err := p.Eval(scrollBottomJS); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	if err := extractor.Sleep(ctx, cfg.ScrollDelay); err != nil {
		return err
	}
	if _, err := p.Eval(scrollTopJS); err != nil {
		return fmt.Errorf("scroll to top: %w", err)
	}
	if err := extractor.Sleep(ctx, cfg.FinalDelay); err != nil {
		return err
	}
	return s.waitImages(ctx)
}

// waitImages polls until every image reports complete, for at most
// ImageWait. Running out of time is not an error; a canceled ctx is.
func (s *Session) waitImages(ctx context.Context) error {
	wait := s.scraper.captureCfg.ImageWait
	if wait <= 0 {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := s.page.Context(waitCtx).Wait(rod.Eval(imagesLoadedJS)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Debug("images still loading, capturing anyway", "url", s.url, "error", err)
	}
	return nil
}

// URL returns the requested URL.
func (s *Session) URL() string { return s.url }

// Snapshot returns the serialized document.
func (s *Session) Snapshot(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	return html, s.note(err)
}

// QueryAll evaluates q in the page.
func (s *Session) QueryAll(ctx context.Context, q extractor.Query) ([]extractor.Element, error) {
	var out []extractor.Element
	if err := s.evalJSON(ctx, &out, queryAllJS, q); err != nil {
		return nil, fmt.Errorf("query %q: %w", q.Selector, err)
	}
	return out, nil
}

// Stylesheets lists document.styleSheets.
func (s *Session) Stylesheets(ctx context.Context) ([]models.Stylesheet, error) {
	var out []models.Stylesheet
	if err := s.evalJSON(ctx, &out, stylesheetsJS); err != nil {
		return nil, err
	}
	return out, nil
}

// Document returns the title and scroll size.
func (s *Session) Document(ctx context.Context) (extractor.DocumentInfo, error) {
	var out extractor.DocumentInfo
	err := s.evalJSON(ctx, &out, documentJS)
	return out, err
}

// SetViewport emulates the given screen size.
func (s *Session) SetViewport(ctx context.Context, vp models.ViewportSpec) error {
	return s.note(s.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
		Mobile:            vp.Mobile,
	}))
}

// Screenshot captures the full scrollable page as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	img, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	return img, s.note(err)
}

func (s *Session) evalJSON(ctx context.Context, dst any, js string, args ...any) error {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return s.note(err)
	}
	return s.note(json.Unmarshal([]byte(res.Value.Str()), dst))
}

// note marks the session failed when err is non-nil and returns err.
func (s *Session) note(err error) error {
	if err != nil {
		s.failed.Store(true)
	}
	return err
}

// Close resets the tab and returns it to the pool. It never fails; cleanup
// errors are logged. Cleanup uses the page without the request context so it
// still runs after the request deadline.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		defer s.scraper.activePages.Add(-1)

		if err := (proto.EmulationClearDeviceMetricsOverride{}).Call(s.page); err != nil {
			slog.Warn("cleanup: failed to clear viewport emulation", "error", err)
		}
		if s.removeStealth != nil {
			_ = s.removeStealth()
		}
		if s.router != nil {
			_ = s.router.Stop()
		}
		if s.scraper.health.finish(s.page.TargetID, !s.failed.Load()) {
			slog.Debug("cleanup: retiring unhealthy tab", "target", s.page.TargetID)
			_ = s.page.Close()
			s.scraper.pagePool.Put(nil)
			return
		}
		if err := s.page.Navigate("about:blank"); err != nil {
			slog.Warn("cleanup: failed to navigate to about:blank, discarding tab",
				"error", err,
			)
			s.scraper.health.forget(s.page.TargetID)
			_ = s.page.Close()
			s.scraper.pagePool.Put(nil)
			return
		}
		s.scraper.pagePool.Put(s.page)
	})
}

// discard closes a tab that failed to open and frees its pool slot.
func (s *Session) discard() {
	s.closeOnce.Do(func() {
		defer s.scraper.activePages.Add(-1)
		if s.router != nil {
			_ = s.router.Stop()
		}
		s.scraper.health.forget(s.page.TargetID)
		_ = s.page.Close()
		s.scraper.pagePool.Put(nil)
	})
}

// categorizeNavError maps navigation failures to NavigationError.
func categorizeNavError(url string, err error) *models.NavigationError {
	return &models.NavigationError{
		URL:     url,
		Timeout: errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}
