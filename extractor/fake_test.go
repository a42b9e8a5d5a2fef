package extractor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"

	"github.com/use-agent/sitemodel/models"
)

// fakePage answers PageQuery calls from canned data keyed by selector.
type fakePage struct {
	snapshot  string
	snapErr   error
	elements  map[string][]Element
	queryErrs map[string]error
	sheets    []models.Stylesheet
	sheetsErr error
	doc       DocumentInfo
	docErr    error

	mu      sync.Mutex
	queries []Query
}

func (f *fakePage) Snapshot(context.Context) (string, error) {
	return f.snapshot, f.snapErr
}

func (f *fakePage) QueryAll(_ context.Context, q Query) ([]Element, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := f.queryErrs[q.Selector]; err != nil {
		return nil, err
	}
	els := f.elements[q.Selector]
	if q.Limit > 0 && len(els) > q.Limit {
		els = els[:q.Limit]
	}
	return els, nil
}

func (f *fakePage) Stylesheets(context.Context) ([]models.Stylesheet, error) {
	return f.sheets, f.sheetsErr
}

func (f *fakePage) Document(context.Context) (DocumentInfo, error) {
	return f.doc, f.docErr
}

// fakeViewport records viewport changes and returns a blank PNG of the
// current viewport size.
type fakeViewport struct {
	current models.ViewportSpec
	set     []string
	failOn  string
}

var errShot = errors.New("screenshot failed")

func (f *fakeViewport) SetViewport(_ context.Context, vp models.ViewportSpec) error {
	f.current = vp
	f.set = append(f.set, vp.Name)
	return nil
}

func (f *fakeViewport) Screenshot(context.Context) ([]byte, error) {
	if f.current.Name == f.failOn {
		return nil, errShot
	}
	return blankPNG(f.current.Width, f.current.Height), nil
}

func blankPNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}

func el(tag, class string) Element {
	return Element{Tag: tag, Attrs: map[string]string{"class": class}, Styles: map[string]string{}}
}
