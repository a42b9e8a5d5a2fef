package extractor

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

// InteractionResult groups the outputs of ExtractInteractions.
type InteractionResult struct {
	Interactions models.InteractionInventory
	Meta         models.MetaInfo
}

// ExtractInteractions collects clickable elements and meta tags.
func ExtractInteractions(ctx context.Context, pq PageQuery, lim Limits) (InteractionResult, error) {
	els, err := pq.QueryAll(ctx, Query{
		Selector: clickTargetSelector,
		Attrs:    []string{"href"},
		Text:     true,
		Limit:    lim.MaxClickTargets,
	})
	if err != nil {
		return InteractionResult{}, &models.ExtractionError{Step: "click targets", Err: err}
	}

	targets := make([]models.ClickTarget, 0, len(els))
	for _, el := range els {
		if lim.MaxClickTargets > 0 && len(targets) >= lim.MaxClickTargets {
			break
		}
		t := models.ClickTarget{
			Tag:     el.TagName(),
			Text:    truncateRunes(strings.TrimSpace(el.Text), lim.ClickTextRunes),
			Classes: el.Classes(),
		}
		if t.Tag == "a" {
			t.Href, _ = el.Attr("href")
		}
		targets = append(targets, t)
	}

	metas, err := pq.QueryAll(ctx, Query{
		Selector: metaSelector,
		Attrs:    []string{"name", "property", "itemprop", "content"},
	})
	if err != nil {
		return InteractionResult{}, &models.ExtractionError{Step: "meta", Err: err}
	}

	return InteractionResult{
		Interactions: models.InteractionInventory{ClickTargets: targets},
		Meta:         metaFrom(metas),
	}, nil
}

// metaFrom keys each tag by name, then property, then itemprop. Later tags
// overwrite earlier ones with the same key.
func metaFrom(els []Element) models.MetaInfo {
	meta := models.MetaInfo{}
	for _, el := range els {
		content, ok := el.Attr("content")
		if !ok || content == "" {
			continue
		}
		for _, attr := range []string{"name", "property", "itemprop"} {
			if key, _ := el.Attr(attr); key != "" {
				meta[key] = content
				break
			}
		}
	}
	return meta
}
