package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitemodel/models"
)

// ExtractStructure parses the page snapshot into a StructuralTree.
// Script, style and noscript elements are removed before anything is read,
// so repeated calls on an unchanged page return identical trees.
func ExtractStructure(ctx context.Context, pq PageQuery, lim Limits) (models.StructuralTree, error) {
	raw, err := pq.Snapshot(ctx)
	if err != nil {
		return models.StructuralTree{}, &models.ExtractionError{Step: "snapshot", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return models.StructuralTree{}, &models.ExtractionError{Step: "parse", Err: err}
	}
	return StructureFromDocument(doc, lim)
}

// StructureFromDocument builds the tree from an already parsed document.
// The document is modified in place.
func StructureFromDocument(doc *goquery.Document, lim Limits) (models.StructuralTree, error) {
	doc.FindMatcher(stripped).Remove()

	full, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return models.StructuralTree{}, &models.ExtractionError{Step: "serialize", Err: err}
	}

	body := doc.Find("body").First()
	bodyMarkup := ""
	if body.Length() > 0 {
		if bodyMarkup, err = goquery.OuterHtml(body); err != nil {
			return models.StructuralTree{}, &models.ExtractionError{Step: "serialize", Err: err}
		}
	}

	tree := models.StructuralTree{
		FullMarkup:       full,
		BodyMarkup:       bodyMarkup,
		Headings:         collectHeadings(doc),
		NavigationLabels: collectNavLabels(doc, lim.MaxNavLabels),
	}

	if main := firstMatch(doc.Selection, MainContentRule); main != nil {
		markup, _ := goquery.OuterHtml(main)
		tree.MainContentMarkup = truncateRunes(markup, lim.MainContentRunes)
	} else {
		tree.MainContentMarkup = truncateRunes(bodyMarkup, lim.MainContentRunes)
	}

	if footer := doc.FindMatcher(footers).First(); footer.Length() > 0 {
		markup, _ := goquery.OuterHtml(footer)
		tree.FooterMarkup = truncateRunes(markup, lim.FooterRunes)
	}

	return tree, nil
}

func collectHeadings(doc *goquery.Document) []models.Heading {
	out := []models.Heading{}
	doc.FindMatcher(headings).Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		out = append(out, models.Heading{
			Level: int(tag[1] - '0'),
			Text:  strings.TrimSpace(s.Text()),
			Tag:   tag,
		})
	})
	return out
}

func collectNavLabels(doc *goquery.Document, limit int) []string {
	out := []string{}
	doc.FindMatcher(anchors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if !hasAncestor(s, NavContainerRule) {
			return true
		}
		if label := collapseSpace(s.Text()); label != "" {
			out = append(out, label)
		}
		return true
	})
	return out
}
