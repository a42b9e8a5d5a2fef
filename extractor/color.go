package extractor

import (
	"math"
	"strconv"
	"strings"
)

// rgba is a parsed sRGB color with alpha in [0, 1].
type rgba struct {
	R, G, B float64
	A       float64
}

// parseColor reads the color forms getComputedStyle produces: the keyword
// transparent, rgb()/rgba() with comma or space separated channels and an
// optional "/ alpha", and #rgb/#rrggbb(aa) hex. Other forms (color(),
// oklch(), named keywords) report ok=false.
func parseColor(v string) (c rgba, ok bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "transparent":
		return rgba{}, true
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
	default:
		return rgba{}, false
	}

	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if end < open {
		return rgba{}, false
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(v[open+1 : end])
	fields := strings.Fields(body)
	if len(fields) != 3 && len(fields) != 4 {
		return rgba{}, false
	}

	var ch [4]float64
	ch[3] = 1
	for i, f := range fields {
		n, err := parseChannel(f, i == 3)
		if err != nil {
			return rgba{}, false
		}
		ch[i] = n
	}
	return rgba{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

// parseChannel reads one channel. Percentages scale to 255 for color
// channels and to 1 for alpha.
func parseChannel(s string, alpha bool) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	switch {
	case pct && alpha:
		return n / 100, nil
	case pct:
		return n * 255 / 100, nil
	}
	return n, nil
}

func parseHex(h string) (rgba, bool) {
	if len(h) == 3 || len(h) == 4 {
		var long strings.Builder
		for _, r := range h {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		h = long.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return rgba{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgba{}, false
	}
	if len(h) == 6 {
		n = n<<8 | 0xff
	}
	return rgba{
		R: float64(n >> 24 & 0xff),
		G: float64(n >> 16 & 0xff),
		B: float64(n >> 8 & 0xff),
		A: float64(n&0xff) / 255,
	}, true
}

// visibleColor reports whether a computed color value paints anything.
// Values in a form parseColor does not know are kept.
func visibleColor(v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}
	c, ok := parseColor(v)
	return !ok || c.A > 0
}

// luminance is the WCAG relative luminance of c, ignoring alpha.
func luminance(c rgba) float64 {
	lin := func(v float64) float64 {
		v /= 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}
