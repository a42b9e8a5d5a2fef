package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Node is the minimal element view the rule tables work on. Browser
// elements and parsed snapshot nodes both satisfy it.
type Node interface {
	TagName() string
	Attr(name string) (string, bool)
}

// Predicate reports whether a node belongs to a category.
type Predicate func(Node) bool

// Rule maps a category to the selector used to find candidates in the live
// document and the predicate that decides membership.
type Rule struct {
	Category string
	Selector string
	Match    Predicate
}

// Component categories.
const (
	CategoryButtons    = "buttons"
	CategoryForms      = "forms"
	CategoryCards      = "cards"
	CategoryNavigation = "navigation"
	CategoryModals     = "modals"
)

// ComponentRules is the ordered component classification table. An element
// may appear in more than one category.
var ComponentRules = []Rule{
	{
		Category: CategoryButtons,
		Selector: `button, a[role="button"], [class*="btn" i], [class*="button" i]`,
		Match: AnyOf(
			Tag("button"),
			AllOf(Tag("a"), AttrEquals("role", "button")),
			ClassContains("btn", "button"),
		),
	},
	{
		Category: CategoryForms,
		Selector: `form`,
		Match:    Tag("form"),
	},
	{
		Category: CategoryCards,
		Selector: `[class*="card" i]`,
		Match:    ClassContains("card"),
	},
	{
		Category: CategoryNavigation,
		Selector: `nav, [role="navigation"]`,
		Match:    AnyOf(Tag("nav"), AttrEquals("role", "navigation")),
	},
	{
		Category: CategoryModals,
		Selector: `[class*="modal" i], dialog, [role="dialog"]`,
		Match:    AnyOf(ClassContains("modal"), Tag("dialog"), AttrEquals("role", "dialog")),
	},
}

// MainContentRule matches the main content container. The first match in
// document order wins.
var MainContentRule = AnyOf(Tag("main"), Tag("article"), ClassContains("content"))

// NavContainerRule matches elements whose descendant links count as
// navigation labels.
var NavContainerRule = AnyOf(Tag("nav"), Tag("header"), ClassContains("nav", "menu"))

// Tag matches any of the given lowercase tag names.
func Tag(names ...string) Predicate {
	return func(n Node) bool {
		t := n.TagName()
		for _, name := range names {
			if t == name {
				return true
			}
		}
		return false
	}
}

// ClassContains matches when the class attribute contains any of subs,
// ignoring case.
func ClassContains(subs ...string) Predicate {
	return func(n Node) bool {
		class, ok := n.Attr("class")
		if !ok || class == "" {
			return false
		}
		class = strings.ToLower(class)
		for _, s := range subs {
			if strings.Contains(class, s) {
				return true
			}
		}
		return false
	}
}

// AttrEquals matches an exact attribute value.
func AttrEquals(name, value string) Predicate {
	return func(n Node) bool {
		v, ok := n.Attr(name)
		return ok && v == value
	}
}

// AnyOf matches when at least one predicate matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(n Node) bool {
		for _, p := range ps {
			if p(n) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate matches.
func AllOf(ps ...Predicate) Predicate {
	return func(n Node) bool {
		for _, p := range ps {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

// htmlNode adapts a parsed element node to Node.
type htmlNode struct{ n *html.Node }

func (h htmlNode) TagName() string { return h.n.Data }

func (h htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// firstMatch returns the first element in document order under sel that
// satisfies p.
func firstMatch(sel *goquery.Selection, p Predicate) *goquery.Selection {
	var found *goquery.Selection
	sel.FindMatcher(allElements).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if p(htmlNode{s.Get(0)}) {
			found = s
			return false
		}
		return true
	})
	return found
}

// hasAncestor reports whether any ancestor element of s satisfies p.
func hasAncestor(s *goquery.Selection, p Predicate) bool {
	for n := s.Get(0).Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && p(htmlNode{n}) {
			return true
		}
	}
	return false
}

var (
	allElements = cascadia.MustCompile("*")
	headings    = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	anchors     = cascadia.MustCompile("a")
	stripped    = cascadia.MustCompile("script, style, noscript")
	footers     = cascadia.MustCompile("footer")
	imageTags   = cascadia.MustCompile("img, picture source[srcset]")
	videoTags   = cascadia.MustCompile("video")
)

// Live-document selectors.
const (
	clickTargetSelector = `a, button, [onclick], [role="button"]`
	landmarkSelector    = `header, nav, main, section, article, aside, footer`
	metaSelector        = `meta`
)
