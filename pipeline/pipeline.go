// Package pipeline runs one capture end to end: open a settled page, take
// the viewport screenshots, run the extractors and assemble a SiteModel.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/sitemodel/config"
	"github.com/use-agent/sitemodel/extractor"
	"github.com/use-agent/sitemodel/metrics"
	"github.com/use-agent/sitemodel/models"
)

// Page is a settled browser page owned by a single run.
type Page interface {
	extractor.PageQuery
	extractor.Viewporter
	Close()
}

// Opener navigates to a URL and returns a settled Page.
type Opener interface {
	Open(ctx context.Context, url string, opts models.SessionOptions) (Page, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string, opts models.SessionOptions) (Page, error)

func (f OpenerFunc) Open(ctx context.Context, url string, opts models.SessionOptions) (Page, error) {
	return f(ctx, url, opts)
}

// Summarizer reduces page markup to a content summary.
type Summarizer interface {
	Summarize(markup, sourceURL string) models.ContentSummary
}

// Pipeline is safe for concurrent use; each Scrape owns its own Page.
type Pipeline struct {
	opener     Opener
	summarizer Summarizer
	cfg        config.CaptureConfig
	limits     extractor.Limits
	viewports  []models.ViewportSpec
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSummarizer enables the content summary.
func WithSummarizer(s Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithViewports replaces the default viewport set. The first entry is the
// primary viewport layout is measured at.
func WithViewports(vps []models.ViewportSpec) Option {
	return func(p *Pipeline) {
		if len(vps) > 0 {
			p.viewports = vps
		}
	}
}

// New creates a Pipeline.
func New(opener Opener, cfg config.CaptureConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		opener:    opener,
		cfg:       cfg,
		limits:    LimitsFromConfig(cfg),
		viewports: models.DefaultViewports(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// LimitsFromConfig copies the extraction caps out of cfg.
func LimitsFromConfig(cfg config.CaptureConfig) extractor.Limits {
	return extractor.Limits{
		MaxColors:          cfg.MaxColors,
		MaxFonts:           cfg.MaxFonts,
		MaxNavLabels:       cfg.MaxNavLabels,
		MaxComponents:      cfg.MaxComponents,
		MaxClickTargets:    cfg.MaxClickTargets,
		MaxImages:          cfg.MaxImages,
		MaxVideos:          cfg.MaxVideos,
		MainContentRunes:   cfg.MainContentRunes,
		FooterRunes:        cfg.FooterRunes,
		ClickTextRunes:     cfg.ClickTextRunes,
		ComponentTextRunes: cfg.ComponentTextRunes,
	}
}

// Scrape captures url and returns the assembled SiteModel. On failure the
// model is nil and the error is a *models.PipelineError naming the stage.
// The page is released on every path.
//
// Stages:
//
//  1. Open         – navigate and stabilise
//  2. Capture      – one screenshot per viewport, then the breakpoint pass
//  3. Restore      – back to the primary viewport for geometry
//  4. Extract      – structure, style, layout, interactions
//  5. Derive       – media from the snapshot and live page, content summary
//  6. Assemble
func (p *Pipeline) Scrape(ctx context.Context, url string, opts models.SessionOptions) (*models.SiteModel, error) {
	start := time.Now()

	// ── 1. Open ───────────────────────────────────────────────────────
	page, err := p.opener.Open(ctx, url, opts)
	p.observe(models.StageNavigation, start)
	if err != nil {
		return nil, p.fail(url, models.StageNavigation, err)
	}
	metrics.SessionOpened()
	defer func() {
		page.Close()
		metrics.SessionClosed()
	}()

	// ── 2. Capture ────────────────────────────────────────────────────
	t := time.Now()
	parts := Parts{CaptureID: uuid.NewString()}
	parts.Screenshots, err = extractor.CaptureAll(ctx, page, p.viewports, p.cfg.ViewportSettle)
	if err != nil {
		return nil, p.fail(url, models.StageCapture, err)
	}
	if len(p.cfg.Breakpoints) > 0 {
		parts.Responsive, err = extractor.MeasureBreakpoints(ctx, page, p.cfg.Breakpoints, p.cfg.BreakpointSettle)
		if err != nil {
			return nil, p.fail(url, models.StageCapture, err)
		}
	}

	// ── 3. Restore primary viewport ───────────────────────────────────
	if err := p.restore(ctx, page); err != nil {
		return nil, p.fail(url, models.StageCapture, err)
	}
	p.observe(models.StageCapture, t)

	// ── 4. Extract ────────────────────────────────────────────────────
	var stage models.Stage
	if p.cfg.ConcurrentExtraction {
		stage, err = p.extractConcurrent(ctx, page, &parts)
	} else {
		stage, err = p.extractSequential(ctx, page, &parts)
	}
	if err != nil {
		return nil, p.fail(url, stage, err)
	}

	// ── 5. Derive media and content ───────────────────────────────────
	t = time.Now()
	media, err := extractor.ExtractMedia(parts.Structure.FullMarkup, url, p.limits)
	if err != nil {
		return nil, p.fail(url, models.StageMedia, err)
	}
	if parts.Media, err = extractor.EnrichMedia(ctx, page, url, media, p.limits); err != nil {
		return nil, p.fail(url, models.StageMedia, err)
	}
	p.observe(models.StageMedia, t)
	if p.summarizer != nil {
		parts.Content = p.summarizer.Summarize(parts.Structure.FullMarkup, url)
	}

	// ── 6. Assemble ───────────────────────────────────────────────────
	parts.CapturedAt = time.Now().UTC()
	site := Assemble(url, parts.Layout.Title, parts)
	metrics.CaptureSucceeded()
	slog.Info("capture complete",
		"url", url,
		"capture_id", site.CaptureID,
		"components", countComponents(site.Components),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return site, nil
}

func (p *Pipeline) restore(ctx context.Context, page Page) error {
	primary := p.viewports[0]
	if err := page.SetViewport(ctx, primary); err != nil {
		return &models.CaptureError{Viewport: primary.Name, Err: err}
	}
	if err := extractor.Sleep(ctx, p.cfg.ViewportSettle); err != nil {
		return &models.CaptureError{Viewport: primary.Name, Err: err}
	}
	return nil
}

// extractSequential runs the extractors in stage order and stops at the
// first failure, returning the failed stage.
func (p *Pipeline) extractSequential(ctx context.Context, page Page, parts *Parts) (models.Stage, error) {
	var err error
	t := time.Now()
	if parts.Structure, err = extractor.ExtractStructure(ctx, page, p.limits); err != nil {
		return models.StageStructure, err
	}
	p.observe(models.StageStructure, t)

	t = time.Now()
	if parts.Style, err = extractor.ExtractStyles(ctx, page, p.limits); err != nil {
		return models.StageStyle, err
	}
	p.observe(models.StageStyle, t)

	t = time.Now()
	if parts.Layout, err = extractor.AnalyzeLayout(ctx, page, p.limits); err != nil {
		return models.StageLayout, err
	}
	p.observe(models.StageLayout, t)

	t = time.Now()
	if parts.Interactions, err = extractor.ExtractInteractions(ctx, page, p.limits); err != nil {
		return models.StageInteraction, err
	}
	p.observe(models.StageInteraction, t)
	return "", nil
}

// extractConcurrent runs the extractors in parallel. Every extractor runs to
// completion and the first failure in stage order is reported, so the result
// matches the sequential path.
func (p *Pipeline) extractConcurrent(ctx context.Context, page Page, parts *Parts) (models.Stage, error) {
	var (
		g    errgroup.Group
		errs [4]error
	)
	g.Go(func() error {
		t := time.Now()
		parts.Structure, errs[0] = extractor.ExtractStructure(ctx, page, p.limits)
		p.observe(models.StageStructure, t)
		return errs[0]
	})
	g.Go(func() error {
		t := time.Now()
		parts.Style, errs[1] = extractor.ExtractStyles(ctx, page, p.limits)
		p.observe(models.StageStyle, t)
		return errs[1]
	})
	g.Go(func() error {
		t := time.Now()
		parts.Layout, errs[2] = extractor.AnalyzeLayout(ctx, page, p.limits)
		p.observe(models.StageLayout, t)
		return errs[2]
	})
	g.Go(func() error {
		t := time.Now()
		parts.Interactions, errs[3] = extractor.ExtractInteractions(ctx, page, p.limits)
		p.observe(models.StageInteraction, t)
		return errs[3]
	})
	if g.Wait() == nil {
		return "", nil
	}

	stages := [4]models.Stage{
		models.StageStructure,
		models.StageStyle,
		models.StageLayout,
		models.StageInteraction,
	}
	for i, err := range errs {
		if err != nil {
			return stages[i], err
		}
	}
	return "", nil
}

func (p *Pipeline) fail(url string, stage models.Stage, err error) error {
	metrics.CaptureFailed(string(stage))
	slog.Warn("capture failed", "url", url, "stage", stage, "error", err)
	return &models.PipelineError{Stage: stage, Err: err}
}

func (p *Pipeline) observe(stage models.Stage, since time.Time) {
	metrics.ObserveStage(string(stage), time.Since(since))
}

func countComponents(c models.ComponentInventory) int {
	return len(c.Buttons) + len(c.Forms) + len(c.Cards) + len(c.Navigation) + len(c.Modals)
}
