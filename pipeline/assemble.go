package pipeline

import (
	"time"

	"github.com/use-agent/sitemodel/extractor"
	"github.com/use-agent/sitemodel/models"
	"github.com/use-agent/sitemodel/simhash"
)

// Parts carries every extractor output a SiteModel is built from, plus the
// capture identity chosen by the caller.
type Parts struct {
	CaptureID  string
	CapturedAt time.Time

	Screenshots  []models.ScreenshotArtifact
	Responsive   []models.BreakpointState
	Structure    models.StructuralTree
	Style        extractor.StyleResult
	Layout       extractor.LayoutResult
	Interactions extractor.InteractionResult
	Media        models.MediaInventory
	Content      models.ContentSummary
}

// Assemble builds the SiteModel from p. It is deterministic: equal inputs
// give equal models.
func Assemble(url, title string, p Parts) *models.SiteModel {
	shots := make(map[string]models.ScreenshotArtifact, len(p.Screenshots))
	for _, s := range p.Screenshots {
		shots[s.Viewport] = s
	}

	meta := p.Interactions.Meta
	if meta == nil {
		meta = models.MetaInfo{}
	}
	responsive := p.Responsive
	if responsive == nil {
		responsive = []models.BreakpointState{}
	}

	return &models.SiteModel{
		CaptureID:    p.CaptureID,
		URL:          url,
		Title:        title,
		CapturedAt:   p.CapturedAt,
		Screenshots:  shots,
		Structure:    p.Structure,
		Styles:       p.Style.Styles,
		Colors:       p.Style.Colors,
		Fonts:        p.Style.Fonts,
		Layout:       p.Layout.Layout,
		Components:   p.Layout.Components,
		Interactions: p.Interactions.Interactions,
		Meta:         meta,
		Media:        p.Media,
		Content:      p.Content,
		Brand:        p.Layout.Brand,
		Performance:  p.Layout.Performance,
		Responsive:   responsive,
		Fingerprint:  simhash.Hex(simhash.Structure(p.Structure)),
	}
}
