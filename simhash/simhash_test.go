package simhash

import (
	"reflect"
	"testing"

	"github.com/use-agent/sitemodel/models"
)

func TestFingerprint(t *testing.T) {
	base := "the quick brown fox jumps over the lazy dog"

	tests := []struct {
		name    string
		other   string
		maxDist int
		minDist int
	}{
		{"identical", base, 0, 0},
		{"one word changed", "the quick brown fox leaps over the lazy dog", 10, 0},
		{"unrelated", "completely unrelated content about quantum physics and mathematics", 64, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(Fingerprint(base), Fingerprint(tt.other))
			if d > tt.maxDist || d < tt.minDist {
				t.Errorf("distance = %d, want within [%d, %d]", d, tt.minDist, tt.maxDist)
			}
		})
	}
}

func TestFingerprintEmpty(t *testing.T) {
	for _, in := range []string{"", "   \t\n  "} {
		if fp := Fingerprint(in); fp != 0 {
			t.Errorf("Fingerprint(%q) = %x, want 0", in, fp)
		}
	}
}

func TestComputeWeights(t *testing.T) {
	heavy := Compute([]Feature{{Token: "a", Weight: 10}, {Token: "b", Weight: 1}})
	if heavy != Compute([]Feature{{Token: "a", Weight: 1}}) {
		t.Error("a dominant feature should decide every bit")
	}
	if Compute(nil) != 0 {
		t.Error("no features should produce 0")
	}
}

func TestDistanceAndSimilar(t *testing.T) {
	tests := []struct {
		a, b uint64
		want int
	}{
		{0xFF, 0xFF, 0},
		{0, ^uint64(0), 64},
		{0, 1, 1},
		{0, 3, 2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%x, %x) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if !Similar(tt.a, tt.b, tt.want) || (tt.want > 0 && Similar(tt.a, tt.b, tt.want-1)) {
			t.Errorf("Similar threshold boundary wrong for distance %d", tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(0xabc); got != "0000000000000abc" {
		t.Errorf("Hex = %q", got)
	}
}

func TestMarkup(t *testing.T) {
	a := `<html><head><title>One</title></head><body><div><h1>Hello</h1><p>World</p></div></body></html>`
	b := `<html><head><title>Two</title></head><body><div><h1>Hi</h1><p>Earth</p></div></body></html>`
	c := `<html><body><table><tr><td>A</td><td>B</td></tr><tr><td>C</td><td>D</td></tr></table></body></html>`

	if Markup(a) != Markup(b) {
		t.Error("same tag structure with different text should match")
	}
	if d := Distance(Markup(a), Markup(c)); d < 3 {
		t.Errorf("different structures too close: %d", d)
	}
	if Markup("plain text only") != 0 {
		t.Error("markup without tags should produce 0")
	}
	if Markup("<br/>") == 0 {
		t.Error("a single tag should produce a non-zero fingerprint")
	}
}

func TestStructure(t *testing.T) {
	tree := models.StructuralTree{
		FullMarkup:       `<html><body><nav><a>Home</a></nav><h1>Welcome</h1><footer>x</footer></body></html>`,
		Headings:         []models.Heading{{Level: 1, Text: "Welcome", Tag: "h1"}},
		NavigationLabels: []string{"Home"},
	}
	copyTree := tree
	if Structure(tree) != Structure(copyTree) {
		t.Error("equal trees must fingerprint identically")
	}

	renamed := tree
	renamed.Headings = []models.Heading{{Level: 1, Text: "A completely different headline", Tag: "h1"}}
	renamed.NavigationLabels = []string{"Shop", "Cart", "Account"}
	if Structure(tree) == Structure(renamed) {
		t.Error("changed outline should change the fingerprint")
	}
}

func TestExtractTagsAndShingles(t *testing.T) {
	tags := extractTags(`<html><head><title>T</title></head><body><div><p>x</p></div></body></html>`)
	want := []string{"html", "head", "title", "body", "div", "p"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("extractTags = %v, want %v", tags, want)
	}

	if got := makeShingles([]string{"a", "b", "c", "d"}, 3); !reflect.DeepEqual(got, []string{"a_b_c", "b_c_d"}) {
		t.Errorf("makeShingles = %v", got)
	}
	if got := makeShingles([]string{"a", "b"}, 3); got != nil {
		t.Errorf("expected nil for too few tokens, got %v", got)
	}
}
