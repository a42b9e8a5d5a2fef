package extractor

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

var componentStyleProps = []string{
	"background-color", "color", "border-radius", "padding", "font-size", "font-weight",
}

// LayoutResult groups the outputs of AnalyzeLayout.
type LayoutResult struct {
	Title       string
	Layout      models.LayoutAnalysis
	Components  models.ComponentInventory
	Brand       models.BrandInfo
	Performance models.PerformanceMetrics
}

// AnalyzeLayout measures the document and its landmark sections, classifies
// UI components with ComponentRules and reads the brand identity. Geometry
// is whatever the current viewport produces, so callers restore the primary
// viewport first.
func AnalyzeLayout(ctx context.Context, pq PageQuery, lim Limits) (LayoutResult, error) {
	doc, err := pq.Document(ctx)
	if err != nil {
		return LayoutResult{}, &models.ExtractionError{Step: "document", Err: err}
	}

	els, err := pq.QueryAll(ctx, Query{Selector: landmarkSelector, Geometry: true})
	if err != nil {
		return LayoutResult{}, &models.ExtractionError{Step: "landmarks", Err: err}
	}
	sections := make([]models.Section, 0, len(els))
	for _, el := range els {
		sections = append(sections, models.Section{
			Tag:     el.TagName(),
			X:       el.Rect.X,
			Y:       el.Rect.Y,
			Width:   el.Rect.Width,
			Height:  el.Rect.Height,
			Classes: el.Classes(),
		})
	}

	inv := models.ComponentInventory{
		Buttons:    []models.Component{},
		Forms:      []models.Component{},
		Cards:      []models.Component{},
		Navigation: []models.Component{},
		Modals:     []models.Component{},
	}
	for _, rule := range ComponentRules {
		comps, err := classify(ctx, pq, rule, lim)
		if err != nil {
			return LayoutResult{}, err
		}
		switch rule.Category {
		case CategoryButtons:
			inv.Buttons = comps
		case CategoryForms:
			inv.Forms = comps
		case CategoryCards:
			inv.Cards = comps
		case CategoryNavigation:
			inv.Navigation = comps
		case CategoryModals:
			inv.Modals = comps
		}
	}

	brand, err := DetectBrand(ctx, pq, doc.Title, lim)
	if err != nil {
		return LayoutResult{}, err
	}

	return LayoutResult{
		Title: doc.Title,
		Layout: models.LayoutAnalysis{
			PageWidth:  doc.Width,
			PageHeight: doc.Height,
			Sections:   sections,
		},
		Components:  inv,
		Brand:       brand,
		Performance: doc.Timing,
	}, nil
}

func classify(ctx context.Context, pq PageQuery, rule Rule, lim Limits) ([]models.Component, error) {
	els, err := pq.QueryAll(ctx, Query{
		Selector: rule.Selector,
		Styles:   componentStyleProps,
		Text:     true,
		Geometry: true,
	})
	if err != nil {
		return nil, &models.ExtractionError{Step: "components " + rule.Category, Err: err}
	}

	out := []models.Component{}
	for _, el := range els {
		if lim.MaxComponents > 0 && len(out) >= lim.MaxComponents {
			break
		}
		if !rule.Match(el) {
			continue
		}
		text := strings.TrimSpace(el.Text)
		// Button labels are kept whole.
		if rule.Category != CategoryButtons {
			text = truncateRunes(text, lim.ComponentTextRunes)
		}
		out = append(out, models.Component{
			Tag:     el.TagName(),
			Text:    text,
			Classes: el.Classes(),
			Style: models.ComponentStyle{
				BackgroundColor: el.Style("background-color"),
				Color:           el.Style("color"),
				BorderRadius:    el.Style("border-radius"),
				Padding:         el.Style("padding"),
				FontSize:        el.Style("font-size"),
				FontWeight:      el.Style("font-weight"),
			},
			Position: el.Rect,
		})
	}
	return out, nil
}
