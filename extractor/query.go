// Package extractor turns a settled page into the feature records of a
// SiteModel. Every extractor reads the page through PageQuery or Viewporter,
// so none of them depend on the browser driver.
package extractor

import (
	"context"
	"strings"

	"github.com/use-agent/sitemodel/models"
)

// PageQuery is the read-only view of a rendered page.
type PageQuery interface {
	// Snapshot returns the serialized document markup.
	Snapshot(ctx context.Context) (string, error)

	// QueryAll returns every element matching q.Selector in document order.
	QueryAll(ctx context.Context, q Query) ([]Element, error)

	// Stylesheets returns one entry per document stylesheet. Sheets whose
	// rules cannot be read are reported with AccessError set, not as an error.
	Stylesheets(ctx context.Context) ([]models.Stylesheet, error)

	// Document returns the title and full scroll size of the document.
	Document(ctx context.Context) (DocumentInfo, error)
}

// Viewporter resizes the page and takes full-page screenshots.
type Viewporter interface {
	SetViewport(ctx context.Context, vp models.ViewportSpec) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Query describes what to read from each matched element.
type Query struct {
	// Selector is a CSS selector evaluated against the live document.
	Selector string `json:"selector"`

	// Styles lists computed style properties to read, in CSS (kebab-case) form.
	Styles []string `json:"styles,omitempty"`

	// Attrs lists attributes to read. "class" is always read.
	Attrs []string `json:"attrs,omitempty"`

	// Props lists DOM properties to read, such as naturalWidth or the
	// resolved src. Values arrive as strings.
	Props []string `json:"props,omitempty"`

	// Text reads innerText.
	Text bool `json:"text,omitempty"`

	// Geometry reads getBoundingClientRect.
	Geometry bool `json:"geometry,omitempty"`

	// Limit stops the walk after this many elements; 0 means no limit.
	Limit int `json:"limit,omitempty"`
}

// Element is one matched element as seen by the browser.
type Element struct {
	Tag    string            `json:"tag"`
	Attrs  map[string]string `json:"attrs"`
	Text   string            `json:"text"`
	Rect   models.Rect       `json:"rect"`
	Styles map[string]string `json:"styles"`
	Props  map[string]string `json:"props,omitempty"`
}

// TagName returns the lowercase tag name.
func (e Element) TagName() string { return strings.ToLower(e.Tag) }

// Attr returns the named attribute.
func (e Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Classes splits the class attribute.
func (e Element) Classes() []string {
	return splitClasses(e.Attrs["class"])
}

// Style returns a computed style value or "".
func (e Element) Style(prop string) string { return e.Styles[prop] }

// Prop returns a DOM property value or "".
func (e Element) Prop(name string) string { return e.Props[name] }

// DocumentInfo is the document-level state read after the page settled.
type DocumentInfo struct {
	Title  string                    `json:"title"`
	Width  int                       `json:"width"`
	Height int                       `json:"height"`
	Timing models.PerformanceMetrics `json:"timing"`
}

func splitClasses(s string) []string {
	fields := strings.Fields(s)
	if fields == nil {
		return []string{}
	}
	return fields
}
