package extractor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

func styled(bg, color, border, font string) Element {
	e := el("div", "")
	e.Styles = map[string]string{
		"background-color":    bg,
		"color":               color,
		"border-top-color":    border,
		"border-right-color":  border,
		"border-bottom-color": border,
		"border-left-color":   border,
		"font-family":         font,
	}
	return e
}

func TestExtractStylesDedupeAndSkip(t *testing.T) {
	pq := &fakePage{
		elements: map[string][]Element{
			"*": {
				styled("rgba(0, 0, 0, 0)", "rgb(0, 0, 0)", "rgb(0, 0, 0)", "Arial"),
				styled("rgb(255, 255, 255)", "rgb(0, 0, 0)", "transparent", "Arial"),
				styled("transparent", "rgb(10, 20, 30)", "rgb(255, 255, 255)", "Georgia, serif"),
				styled("rgba(255, 255, 255, 0)", "rgb(0 0 0 / 0)", "rgba(10, 20, 30, 0.0)", "Arial"),
				styled("", "#ffffff00", "", "Arial"),
			},
		},
	}

	got, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStyles() error = %v", err)
	}

	wantColors := models.ColorPalette{"rgb(0, 0, 0)", "rgb(255, 255, 255)", "rgb(10, 20, 30)"}
	if !reflect.DeepEqual(got.Colors, wantColors) {
		t.Errorf("Colors = %v, want %v", got.Colors, wantColors)
	}
	wantFonts := models.FontInventory{"Arial", "Georgia, serif"}
	if !reflect.DeepEqual(got.Fonts, wantFonts) {
		t.Errorf("Fonts = %v, want %v", got.Fonts, wantFonts)
	}
	if got.Styles.Stylesheets == nil {
		t.Error("Stylesheets should be an empty list, not nil")
	}
}

func TestExtractStylesReadsBorderSides(t *testing.T) {
	e := styled("", "rgb(1, 2, 3)", "rgb(0, 0, 0)", "Inter")
	e.Styles["border-right-color"] = "rgb(255, 0, 0)"
	e.Styles["border-left-color"] = "rgba(0, 0, 255, 0.5)"
	pq := &fakePage{elements: map[string][]Element{"*": {e}}}

	got, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStyles() error = %v", err)
	}
	want := models.ColorPalette{"rgb(1, 2, 3)", "rgb(0, 0, 0)", "rgb(255, 0, 0)", "rgba(0, 0, 255, 0.5)"}
	if !reflect.DeepEqual(got.Colors, want) {
		t.Errorf("Colors = %v, want %v", got.Colors, want)
	}
	for _, q := range pq.queries {
		for _, prop := range q.Styles {
			if prop == "border-color" {
				t.Error("the border-color shorthand must not be read")
			}
		}
	}
}

func TestExtractStylesCountsAnimated(t *testing.T) {
	still := styled("", "rgb(0, 0, 0)", "", "Arial")
	still.Styles["animation-name"] = "none"
	still.Styles["transition-duration"] = "0s, 0s"

	spinning := styled("", "rgb(0, 0, 0)", "", "Arial")
	spinning.Styles["animation-name"] = "none, spin"
	spinning.Styles["transition-duration"] = "0s"

	fading := styled("", "rgb(0, 0, 0)", "", "Arial")
	fading.Styles["animation-name"] = "none"
	fading.Styles["transition-duration"] = "0s, 0.3s"

	pq := &fakePage{elements: map[string][]Element{"*": {still, spinning, fading}}}
	got, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStyles() error = %v", err)
	}
	if got.Styles.AnimatedElements != 2 {
		t.Errorf("AnimatedElements = %d, want 2", got.Styles.AnimatedElements)
	}
}

func TestExtractStylesCaps(t *testing.T) {
	var els []Element
	for i := 0; i < 40; i++ {
		els = append(els, styled(
			fmt.Sprintf("rgb(%d, 0, 0)", i),
			fmt.Sprintf("rgb(0, %d, 0)", i),
			fmt.Sprintf("rgb(0, 0, %d)", i),
			fmt.Sprintf("Font%d", i),
		))
	}
	pq := &fakePage{elements: map[string][]Element{"*": els}}

	got, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStyles() error = %v", err)
	}
	if len(got.Colors) != 20 {
		t.Errorf("len(Colors) = %d, want 20", len(got.Colors))
	}
	if len(got.Fonts) != 10 {
		t.Errorf("len(Fonts) = %d, want 10", len(got.Fonts))
	}
	if got.Colors[0] != "rgb(0, 0, 0)" || got.Fonts[9] != "Font9" {
		t.Errorf("first-seen order not preserved: %v %v", got.Colors[:3], got.Fonts)
	}
}

func TestExtractStylesCrossOriginSheet(t *testing.T) {
	pq := &fakePage{
		sheets: []models.Stylesheet{
			{Kind: models.StylesheetInternal, Rules: []string{"body { margin: 0px; }"}},
			{Kind: models.StylesheetExternal, Href: "https://cdn.example.com/x.css", AccessError: true},
		},
		elements: map[string][]Element{"*": {styled("", "rgb(1, 2, 3)", "", "Inter")}},
	}

	got, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("cross-origin sheet must not abort extraction: %v", err)
	}
	if n := len(got.Styles.Stylesheets); n != 2 {
		t.Fatalf("got %d stylesheets, want 2", n)
	}
	if s := got.Styles.Stylesheets[1]; !s.AccessError || len(s.Rules) != 0 {
		t.Errorf("external sheet = %+v, want access error with no rules", s)
	}
	if len(got.Colors) != 1 {
		t.Errorf("Colors = %v", got.Colors)
	}
}

func TestExtractStylesQueryError(t *testing.T) {
	boom := errors.New("target closed")
	pq := &fakePage{queryErrs: map[string]error{"*": boom}}

	_, err := ExtractStyles(context.Background(), pq, DefaultLimits())
	var ee *models.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if !errors.Is(err, boom) {
		t.Error("cause not wrapped")
	}
}
