package extractor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Acme</title><style>body{color:red}</style>
<script>var tracking = 1;</script></head>
<body>
<header><a href="/">  Home  </a></header>
<h1>Welcome</h1>
<nav><a href="/a">About</a><a href="/b">Blog</a></nav>
<div class="Site-Menu"><a href="/c">Contact</a></div>
<main><h2> Intro </h2><p>Hello</p></main>
<p><a href="/x">Elsewhere</a></p>
<noscript>enable js</noscript>
<footer>(c) 2024</footer>
</body></html>`

func TestExtractStructure(t *testing.T) {
	pq := &fakePage{snapshot: samplePage}
	tree, err := ExtractStructure(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStructure() error = %v", err)
	}

	if len(tree.Headings) != 2 {
		t.Fatalf("got %d headings, want 2", len(tree.Headings))
	}
	if h := tree.Headings[0]; h.Level != 1 || h.Text != "Welcome" || h.Tag != "h1" {
		t.Errorf("Headings[0] = %+v", h)
	}
	if h := tree.Headings[1]; h.Level != 2 || h.Text != "Intro" {
		t.Errorf("Headings[1] = %+v", h)
	}

	wantNav := []string{"Home", "About", "Blog", "Contact"}
	if !reflect.DeepEqual(tree.NavigationLabels, wantNav) {
		t.Errorf("NavigationLabels = %v, want %v", tree.NavigationLabels, wantNav)
	}

	if !strings.HasPrefix(tree.MainContentMarkup, "<main>") {
		t.Errorf("MainContentMarkup = %q, want <main> element", tree.MainContentMarkup)
	}
	if tree.FooterMarkup != "<footer>(c) 2024</footer>" {
		t.Errorf("FooterMarkup = %q", tree.FooterMarkup)
	}

	for _, gone := range []string{"<script", "<style", "<noscript", "tracking"} {
		if strings.Contains(tree.FullMarkup, gone) {
			t.Errorf("FullMarkup still contains %q", gone)
		}
	}
	if !strings.HasPrefix(tree.BodyMarkup, "<body>") {
		t.Errorf("BodyMarkup = %q", tree.BodyMarkup[:20])
	}
}

func TestExtractStructureFallbacks(t *testing.T) {
	long := strings.Repeat("é", 6000)
	page := `<html><body><p>` + long + `</p><footer>` + strings.Repeat("f", 1500) + `</footer></body></html>`

	tree, err := ExtractStructure(context.Background(), &fakePage{snapshot: page}, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStructure() error = %v", err)
	}
	if !strings.HasPrefix(tree.MainContentMarkup, "<body>") {
		t.Errorf("expected body fallback, got %q", tree.MainContentMarkup[:10])
	}
	if n := utf8.RuneCountInString(tree.MainContentMarkup); n != 5000 {
		t.Errorf("main content runes = %d, want 5000", n)
	}
	if n := utf8.RuneCountInString(tree.FooterMarkup); n != 1000 {
		t.Errorf("footer runes = %d, want 1000", n)
	}
	if len(tree.Headings) != 0 || len(tree.NavigationLabels) != 0 {
		t.Errorf("expected empty headings and nav, got %v %v", tree.Headings, tree.NavigationLabels)
	}
}

func TestExtractStructureNoFooter(t *testing.T) {
	tree, err := ExtractStructure(context.Background(), &fakePage{snapshot: `<p class="content">x</p>`}, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStructure() error = %v", err)
	}
	if tree.FooterMarkup != "" {
		t.Errorf("FooterMarkup = %q, want empty", tree.FooterMarkup)
	}
	if tree.MainContentMarkup != `<p class="content">x</p>` {
		t.Errorf("MainContentMarkup = %q", tree.MainContentMarkup)
	}
}

func TestNavLabelCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<nav>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<a href="/%d">Link %d</a><a href="#"> </a>`, i, i)
	}
	b.WriteString("</nav>")

	tree, err := ExtractStructure(context.Background(), &fakePage{snapshot: b.String()}, DefaultLimits())
	if err != nil {
		t.Fatalf("ExtractStructure() error = %v", err)
	}
	if len(tree.NavigationLabels) != 20 {
		t.Fatalf("got %d labels, want 20", len(tree.NavigationLabels))
	}
	if tree.NavigationLabels[19] != "Link 19" {
		t.Errorf("last label = %q", tree.NavigationLabels[19])
	}
}

func TestExtractStructureIdempotent(t *testing.T) {
	pq := &fakePage{snapshot: samplePage}
	a, err := ExtractStructure(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	b, err := ExtractStructure(context.Background(), pq, DefaultLimits())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two extractions of the same page differ")
	}
}

func TestExtractStructureSnapshotError(t *testing.T) {
	_, err := ExtractStructure(context.Background(), &fakePage{snapErr: context.DeadlineExceeded}, DefaultLimits())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "snapshot") {
		t.Errorf("error = %v, want snapshot step", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"abc", 0, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
