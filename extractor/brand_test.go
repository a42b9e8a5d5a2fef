package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

func body(bg, color string) Element {
	e := el("body", "")
	e.Styles = map[string]string{"background-color": bg, "color": color, "font-family": "Inter"}
	return e
}

func TestDetectBrand(t *testing.T) {
	logoImg := el("img", "")
	logoImg.Attrs["alt"] = " Acme logo "
	logoImg.Props = map[string]string{"src": "https://acme.test/logo.svg"}

	unresolved := el("img", "")

	heading := el("h1", "")
	heading.Text = "  Acme\n  Widgets "

	tests := []struct {
		name       string
		elements   map[string][]Element
		title      string
		wantBg     string
		wantDark   bool
		wantLogo   models.Logo
		wantSearch bool
	}{
		{
			name: "image logo on dark page",
			elements: map[string][]Element{
				"body":               {body("rgb(32, 33, 36)", "rgb(232, 234, 237)")},
				`img[alt*="logo" i]`: {unresolved},
				`img[src*="logo" i]`: {logoImg},
				searchSelector:       {el("input", "")},
			},
			wantBg:     "rgb(32, 33, 36)",
			wantDark:   true,
			wantLogo:   models.Logo{Kind: models.LogoImage, Src: "https://acme.test/logo.svg", Alt: "Acme logo"},
			wantSearch: true,
		},
		{
			name: "text logo on transparent body",
			elements: map[string][]Element{
				"body": {body("rgba(0, 0, 0, 0)", "rgb(0, 0, 0)")},
				"h1":   {heading},
			},
			wantBg:   defaultBackground,
			wantLogo: models.Logo{Kind: models.LogoText, Text: "Acme Widgets"},
		},
		{
			name:     "title fallback",
			elements: map[string][]Element{},
			title:    " Acme Store ",
			wantBg:   defaultBackground,
			wantLogo: models.Logo{Kind: models.LogoText, Text: "Acme Store"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectBrand(context.Background(), &fakePage{elements: tt.elements}, tt.title, DefaultLimits())
			if err != nil {
				t.Fatalf("DetectBrand() error = %v", err)
			}
			if got.BackgroundColor != tt.wantBg || got.IsDark != tt.wantDark {
				t.Errorf("background = %q dark=%v, want %q dark=%v", got.BackgroundColor, got.IsDark, tt.wantBg, tt.wantDark)
			}
			if got.Logo != tt.wantLogo {
				t.Errorf("Logo = %+v, want %+v", got.Logo, tt.wantLogo)
			}
			if got.HasSearch != tt.wantSearch {
				t.Errorf("HasSearch = %v, want %v", got.HasSearch, tt.wantSearch)
			}
		})
	}
}

func TestDetectBrandQueryError(t *testing.T) {
	boom := errors.New("target closed")
	_, err := DetectBrand(context.Background(), &fakePage{queryErrs: map[string]error{searchSelector: boom}}, "", DefaultLimits())
	var ee *models.ExtractionError
	if !errors.As(err, &ee) || ee.Step != "search" || !errors.Is(err, boom) {
		t.Errorf("err = %v, want search ExtractionError", err)
	}
}
