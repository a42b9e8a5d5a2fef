package simhash

import (
	"fmt"
	"strings"

	"github.com/use-agent/sitemodel/models"
	"golang.org/x/net/html"
)

// Feature weights for structural fingerprints. Headings and navigation carry
// more signal than raw tag order.
const (
	weightTagShingle = 1
	weightNavLabel   = 2
	weightHeading    = 3
)

// Markup fingerprints the open-tag sequence of an HTML document, ignoring
// text and attributes.
func Markup(markup string) uint64 {
	return Compute(tagFeatures(markup))
}

// Structure fingerprints a StructuralTree from its tag sequence, heading
// outline and navigation labels. Equal trees always produce equal values.
func Structure(tree models.StructuralTree) uint64 {
	features := tagFeatures(tree.FullMarkup)
	for _, h := range tree.Headings {
		features = append(features, Feature{
			Token:  fmt.Sprintf("h%d:%s", h.Level, strings.ToLower(h.Text)),
			Weight: weightHeading,
		})
	}
	for _, label := range tree.NavigationLabels {
		features = append(features, Feature{
			Token:  "nav:" + strings.ToLower(label),
			Weight: weightNavLabel,
		})
	}
	return Compute(features)
}

func tagFeatures(markup string) []Feature {
	tags := extractTags(markup)
	if len(tags) == 0 {
		return nil
	}
	tokens := makeShingles(tags, 3)
	if len(tokens) == 0 {
		tokens = tags
	}
	features := make([]Feature, len(tokens))
	for i, tok := range tokens {
		features[i] = Feature{Token: tok, Weight: weightTagShingle}
	}
	return features
}

// extractTags walks HTML with the tokenizer and collects open tag names in order.
func extractTags(markup string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var tags []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tags = append(tags, string(tn))
		}
	}
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
