package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/sitemodel/models"
)

const (
	breakpointHeight = 800

	// mobileBelow is the first width emulated as a desktop browser.
	mobileBelow = 768

	navSelector = `nav, [role="navigation"]`
)

// ResponsivePage can be resized and queried.
type ResponsivePage interface {
	PageQuery
	Viewporter
}

// MeasureBreakpoints resizes the page to each width in turn and records the
// document size, whether any navigation element is rendered, and whether
// the content overflows horizontally. The viewport is left at the last
// width. Failures are reported as *models.CaptureError.
func MeasureBreakpoints(ctx context.Context, page ResponsivePage, widths []int, settle time.Duration) ([]models.BreakpointState, error) {
	out := make([]models.BreakpointState, 0, len(widths))
	for _, w := range widths {
		vp := models.ViewportSpec{
			Name:   fmt.Sprintf("breakpoint-%d", w),
			Width:  w,
			Height: breakpointHeight,
			Mobile: w < mobileBelow,
		}
		state, err := measureOne(ctx, page, vp, settle)
		if err != nil {
			return nil, &models.CaptureError{Viewport: vp.Name, Err: err}
		}
		out = append(out, state)
	}
	return out, nil
}

func measureOne(ctx context.Context, page ResponsivePage, vp models.ViewportSpec, settle time.Duration) (models.BreakpointState, error) {
	if err := page.SetViewport(ctx, vp); err != nil {
		return models.BreakpointState{}, err
	}
	if err := Sleep(ctx, settle); err != nil {
		return models.BreakpointState{}, err
	}
	doc, err := page.Document(ctx)
	if err != nil {
		return models.BreakpointState{}, err
	}
	navs, err := page.QueryAll(ctx, Query{
		Selector: navSelector,
		Styles:   []string{"display", "visibility"},
		Geometry: true,
	})
	if err != nil {
		return models.BreakpointState{}, err
	}

	state := models.BreakpointState{
		Width:      vp.Width,
		PageWidth:  doc.Width,
		PageHeight: doc.Height,
		Overflow:   doc.Width > vp.Width,
	}
	for _, n := range navs {
		if rendered(n) {
			state.NavVisible = true
			break
		}
	}
	return state, nil
}

// rendered reports whether el occupies space and is not hidden.
func rendered(el Element) bool {
	return el.Rect.Width > 0 && el.Rect.Height > 0 &&
		el.Style("display") != "none" && el.Style("visibility") != "hidden"
}
