package extractor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

func TestExtractMedia(t *testing.T) {
	markup := `<html><body>
<img src="/a.png" alt=" Logo ">
<img src="data:image/gif;base64,R0lGOD" data-src="lazy/b.jpg">
<img data-original="https://cdn.example.com/c.webp">
<img src="/a.png">
<img>
<video poster="/poster.jpg"><source src="clip.mp4"></video>
<video></video>
</body></html>`

	inv, err := ExtractMedia(markup, "https://example.com/blog/post", DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractMedia() error = %v", err)
	}

	wantImages := []string{
		"https://example.com/a.png",
		"https://example.com/blog/lazy/b.jpg",
		"https://cdn.example.com/c.webp",
	}
	if len(inv.Images) != len(wantImages) {
		t.Fatalf("got %d images, want %d: %+v", len(inv.Images), len(wantImages), inv.Images)
	}
	for i, want := range wantImages {
		if inv.Images[i].Src != want {
			t.Errorf("Images[%d].Src = %q, want %q", i, inv.Images[i].Src, want)
		}
	}
	if inv.Images[0].Alt != "Logo" {
		t.Errorf("Alt = %q", inv.Images[0].Alt)
	}

	if len(inv.Videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(inv.Videos))
	}
	if v := inv.Videos[0]; v.Src != "https://example.com/blog/clip.mp4" || v.Poster != "https://example.com/poster.jpg" {
		t.Errorf("video = %+v", v)
	}
}

func TestExtractMediaCap(t *testing.T) {
	lim := DefaultLimits()
	lim.MaxImages = 2
	inv, err := ExtractMedia(`<img src="1.png"><img src="2.png"><img src="3.png">`, "https://x.test/", lim)
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Images) != 2 {
		t.Errorf("got %d images, want 2", len(inv.Images))
	}
}

func TestExtractMediaSourcesAndSizes(t *testing.T) {
	markup := `<html><body>
<picture>
  <source srcset="/hero.avif 1x, /hero@2x.avif 2x" type="image/avif">
  <img src="/hero.jpg" width="1200" height="600" alt="Hero">
</picture>
<img srcset="thumb-small.webp 320w, thumb.webp 640w">
<img src="/icon.svg?v=3" width="24px">
</body></html>`

	inv, err := ExtractMedia(markup, "https://example.com/", DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractMedia() error = %v", err)
	}
	want := []models.Image{
		{Src: "https://example.com/hero.avif", Format: "avif", Context: models.ImageContextSource},
		{Src: "https://example.com/hero.jpg", Alt: "Hero", Width: 1200, Height: 600, Format: "jpeg", Context: models.ImageContextElement},
		{Src: "https://example.com/thumb-small.webp", Format: "webp", Context: models.ImageContextElement},
		{Src: "https://example.com/icon.svg?v=3", Width: 24, Format: "svg", Context: models.ImageContextElement},
	}
	if !reflect.DeepEqual(inv.Images, want) {
		t.Errorf("Images =\n%+v\nwant\n%+v", inv.Images, want)
	}
}

func TestEnrichMedia(t *testing.T) {
	inv := models.MediaInventory{
		Images: []models.Image{
			{Src: "https://example.com/hero.jpg", Width: 1200, Height: 600, Context: models.ImageContextElement},
			{Src: "https://example.com/lazy.png", Context: models.ImageContextElement},
		},
		Videos: []models.Video{},
	}

	natural := Element{Props: map[string]string{
		"currentSrc": "https://example.com/hero.jpg", "naturalWidth": "2400", "naturalHeight": "1200",
	}}
	rendered := Element{
		Props: map[string]string{"src": "https://example.com/lazy.png", "naturalWidth": "0"},
		Rect:  models.Rect{Width: 300, Height: 150},
	}
	banner := Element{
		Styles: map[string]string{"background-image": `linear-gradient(red, blue), url("/banner.webp")`},
		Rect:   models.Rect{Width: 1920, Height: 400},
	}
	again := Element{Styles: map[string]string{"background-image": `url(https://example.com/hero.jpg)`}}
	inline := Element{Styles: map[string]string{"background-image": `url("data:image/png;base64,AAAA")`}}

	pq := &fakePage{elements: map[string][]Element{
		"img": {natural, rendered},
		"*":   {banner, again, inline, {Styles: map[string]string{"background-image": "none"}}},
	}}

	got, err := EnrichMedia(context.Background(), pq, "https://example.com/", inv, DefaultLimits())
	if err != nil {
		t.Fatalf("EnrichMedia() error = %v", err)
	}
	want := []models.Image{
		{Src: "https://example.com/hero.jpg", Width: 2400, Height: 1200, Context: models.ImageContextElement},
		{Src: "https://example.com/lazy.png", Width: 300, Height: 150, Context: models.ImageContextElement},
		{Src: "https://example.com/banner.webp", Width: 1920, Height: 400, Format: "webp", Context: models.ImageContextBackground},
	}
	if !reflect.DeepEqual(got.Images, want) {
		t.Errorf("Images =\n%+v\nwant\n%+v", got.Images, want)
	}
}

func TestEnrichMediaCapAndErrors(t *testing.T) {
	lim := DefaultLimits()
	lim.MaxImages = 1
	inv := models.MediaInventory{Images: []models.Image{{Src: "https://x.test/a.png"}}}
	pq := &fakePage{elements: map[string][]Element{
		"*": {{Styles: map[string]string{"background-image": "url(/b.png)"}}},
	}}
	got, err := EnrichMedia(context.Background(), pq, "https://x.test/", inv, lim)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Images) != 1 {
		t.Errorf("got %d images, want 1", len(got.Images))
	}

	boom := errors.New("target closed")
	_, err = EnrichMedia(context.Background(), &fakePage{queryErrs: map[string]error{"*": boom}}, "https://x.test/", inv, lim)
	var ee *models.ExtractionError
	if !errors.As(err, &ee) || !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped ExtractionError", err)
	}
}

func TestMediaHelpers(t *testing.T) {
	if got := backgroundURLs(`url('a.png'), url( "b.png" )`); !reflect.DeepEqual(got, []string{"a.png", "b.png"}) {
		t.Errorf("backgroundURLs = %v", got)
	}
	tests := []struct {
		in, want string
	}{
		{"https://x.test/a.JPG", "jpeg"},
		{"https://x.test/a.png?w=200", "png"},
		{"https://x.test/image", ""},
		{"https://x.test/a.php", ""},
	}
	for _, tt := range tests {
		if got := formatFromURL(tt.in); got != tt.want {
			t.Errorf("formatFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if formatFromType("image/svg+xml") != "svg" || formatFromType("text/css") != "" {
		t.Error("formatFromType mismatch")
	}
	if atoi("640px") != 640 || atoi("auto") != 0 || atoi("") != 0 {
		t.Error("atoi mismatch")
	}
}
