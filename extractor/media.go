package extractor

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sitemodel/models"
)

// lazySrcAttrs are tried in order when an image has no usable src.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-lazy", "data-original", "data-img", "data-image"}

// cssURL matches one url(...) reference in a computed background-image.
var cssURL = regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)

// knownFormats maps URL extensions to image formats.
var knownFormats = map[string]string{
	"jpg": "jpeg", "jpeg": "jpeg", "png": "png", "gif": "gif", "webp": "webp",
	"avif": "avif", "svg": "svg", "ico": "ico", "bmp": "bmp",
}

// ExtractMedia lists images and videos in markup with URLs resolved against
// pageURL. Images come from <img> and <picture> sources and are
// deduplicated by source; sizes are the declared width and height.
func ExtractMedia(markup, pageURL string, lim Limits) (models.MediaInventory, error) {
	inv := models.MediaInventory{Images: []models.Image{}, Videos: []models.Video{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return inv, &models.ExtractionError{Step: "media", Err: err}
	}
	base, _ := url.Parse(pageURL)

	seen := make(map[string]struct{})
	doc.FindMatcher(imageTags).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if lim.MaxImages > 0 && len(inv.Images) >= lim.MaxImages {
			return false
		}
		img := models.Image{Context: models.ImageContextElement}
		if goquery.NodeName(s) == "source" {
			img.Context = models.ImageContextSource
			srcset, _ := s.Attr("srcset")
			img.Src = resolveURL(base, firstCandidate(srcset))
			img.Format = formatFromType(s.AttrOr("type", ""))
		} else {
			img.Src = resolveURL(base, imageSource(s))
			img.Alt = strings.TrimSpace(s.AttrOr("alt", ""))
		}
		if img.Src == "" {
			return true
		}
		if _, dup := seen[img.Src]; dup {
			return true
		}
		seen[img.Src] = struct{}{}
		img.Width = atoiAttr(s, "width")
		img.Height = atoiAttr(s, "height")
		if img.Format == "" {
			img.Format = formatFromURL(img.Src)
		}
		inv.Images = append(inv.Images, img)
		return true
	})

	doc.FindMatcher(videoTags).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if lim.MaxVideos > 0 && len(inv.Videos) >= lim.MaxVideos {
			return false
		}
		src, _ := s.Attr("src")
		if src == "" {
			src, _ = s.Find("source[src]").First().Attr("src")
		}
		poster, _ := s.Attr("poster")
		v := models.Video{Src: resolveURL(base, src), Poster: resolveURL(base, poster)}
		if v.Src != "" || v.Poster != "" {
			inv.Videos = append(inv.Videos, v)
		}
		return true
	})

	return inv, nil
}

// EnrichMedia completes a markup inventory from the live page: intrinsic
// image sizes replace declared ones, and CSS background images are
// appended after the element images, up to MaxImages.
func EnrichMedia(ctx context.Context, pq PageQuery, pageURL string, inv models.MediaInventory, lim Limits) (models.MediaInventory, error) {
	imgs, err := pq.QueryAll(ctx, Query{
		Selector: "img",
		Props:    []string{"currentSrc", "src", "naturalWidth", "naturalHeight"},
		Geometry: true,
	})
	if err != nil {
		return inv, &models.ExtractionError{Step: "image sizes", Err: err}
	}
	type size struct{ w, h int }
	sizes := make(map[string]size, len(imgs))
	for _, el := range imgs {
		sz := size{atoi(el.Prop("naturalWidth")), atoi(el.Prop("naturalHeight"))}
		if sz.w == 0 || sz.h == 0 {
			sz = size{int(el.Rect.Width), int(el.Rect.Height)}
		}
		if sz.w == 0 || sz.h == 0 {
			continue
		}
		for _, key := range []string{el.Prop("currentSrc"), el.Prop("src")} {
			if key != "" {
				sizes[key] = sz
			}
		}
	}

	images := make([]models.Image, 0, len(inv.Images))
	seen := make(map[string]struct{}, len(inv.Images))
	for _, img := range inv.Images {
		if sz, ok := sizes[img.Src]; ok {
			img.Width, img.Height = sz.w, sz.h
		}
		seen[img.Src] = struct{}{}
		images = append(images, img)
	}

	els, err := pq.QueryAll(ctx, Query{
		Selector: "*",
		Styles:   []string{"background-image"},
		Geometry: true,
	})
	if err != nil {
		return inv, &models.ExtractionError{Step: "background images", Err: err}
	}
	base, _ := url.Parse(pageURL)
	for _, el := range els {
		for _, ref := range backgroundURLs(el.Style("background-image")) {
			if lim.MaxImages > 0 && len(images) >= lim.MaxImages {
				inv.Images = images
				return inv, nil
			}
			src := resolveURL(base, ref)
			if src == "" {
				continue
			}
			if _, dup := seen[src]; dup {
				continue
			}
			seen[src] = struct{}{}
			images = append(images, models.Image{
				Src:     src,
				Width:   int(el.Rect.Width),
				Height:  int(el.Rect.Height),
				Format:  formatFromURL(src),
				Context: models.ImageContextBackground,
			})
		}
	}
	inv.Images = images
	return inv, nil
}

// backgroundURLs returns every url() reference in a background-image value.
func backgroundURLs(v string) []string {
	if v == "" || v == "none" {
		return nil
	}
	var out []string
	for _, m := range cssURL.FindAllStringSubmatch(v, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func imageSource(s *goquery.Selection) string {
	if src, _ := s.Attr("src"); src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	for _, attr := range lazySrcAttrs {
		if v, _ := s.Attr(attr); v != "" {
			return v
		}
	}
	if srcset, _ := s.Attr("srcset"); srcset != "" {
		return firstCandidate(srcset)
	}
	return ""
}

// firstCandidate returns the URL of the first srcset candidate.
func firstCandidate(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// formatFromURL reads the image format from the path extension.
func formatFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	return knownFormats[ext]
}

// formatFromType reads the format from a MIME type such as image/webp.
func formatFromType(mime string) string {
	sub, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
	if !ok {
		return ""
	}
	if sub == "svg+xml" {
		return "svg"
	}
	return knownFormats[sub]
}

func atoiAttr(s *goquery.Selection, name string) int {
	return atoi(s.AttrOr(name, ""))
}

// atoi parses a leading integer such as "640" or "640px"; anything else is 0.
func atoi(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}

// resolveURL makes ref absolute. Inline data URIs and unparsable
// references yield "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
