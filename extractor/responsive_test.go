package extractor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

// responsivePage serves a nav that hides below 768px and a document whose
// width never drops under 400px.
type responsivePage struct {
	fakePage
	fakeViewport
	mobileFlags []bool
}

func (r *responsivePage) SetViewport(ctx context.Context, vp models.ViewportSpec) error {
	r.mobileFlags = append(r.mobileFlags, vp.Mobile)
	return r.fakeViewport.SetViewport(ctx, vp)
}

func (r *responsivePage) Document(context.Context) (DocumentInfo, error) {
	return DocumentInfo{Width: max(r.current.Width, 400), Height: 2000}, r.docErr
}

func (r *responsivePage) QueryAll(ctx context.Context, q Query) ([]Element, error) {
	if q.Selector != navSelector {
		return r.fakePage.QueryAll(ctx, q)
	}
	nav := el("nav", "")
	if r.current.Width < 768 {
		nav.Styles["display"] = "none"
		return []Element{nav}, nil
	}
	nav.Rect = models.Rect{Width: float64(r.current.Width), Height: 64}
	return []Element{nav}, nil
}

func TestMeasureBreakpoints(t *testing.T) {
	page := &responsivePage{}
	got, err := MeasureBreakpoints(context.Background(), page, []int{320, 768, 1440}, 0)
	if err != nil {
		t.Fatalf("MeasureBreakpoints() error = %v", err)
	}
	want := []models.BreakpointState{
		{Width: 320, PageWidth: 400, PageHeight: 2000, NavVisible: false, Overflow: true},
		{Width: 768, PageWidth: 768, PageHeight: 2000, NavVisible: true},
		{Width: 1440, PageWidth: 1440, PageHeight: 2000, NavVisible: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("states = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(page.mobileFlags, []bool{true, false, false}) {
		t.Errorf("mobile emulation = %v", page.mobileFlags)
	}
	if page.current.Height != 800 {
		t.Errorf("breakpoint height = %d, want 800", page.current.Height)
	}
}

func TestMeasureBreakpointsError(t *testing.T) {
	boom := errors.New("document gone")
	page := &responsivePage{}
	page.docErr = boom

	_, err := MeasureBreakpoints(context.Background(), page, []int{1024}, 0)
	var ce *models.CaptureError
	if !errors.As(err, &ce) || ce.Viewport != "breakpoint-1024" || !errors.Is(err, boom) {
		t.Errorf("err = %v, want CaptureError for breakpoint-1024", err)
	}
}

func TestRendered(t *testing.T) {
	visible := el("nav", "")
	visible.Rect = models.Rect{Width: 100, Height: 40}
	hidden := visible
	hidden.Styles = map[string]string{"visibility": "hidden"}
	if !rendered(visible) || rendered(hidden) || rendered(el("nav", "")) {
		t.Error("rendered mismatch")
	}
}
