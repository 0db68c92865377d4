// internal/page/page.go
package page

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// Element is one element of a parsed snapshot, flattened for scanning.
// Text is the collapsed text of the element and all its descendants.
type Element struct {
	Tag   string
	Attrs map[string]string
	Text  string
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// Selector matches elements by substring against class, id or any
// other attribute. Zero fields are ignored; set fields must all match.
// Matching is case-insensitive, same as attribute wildcard selectors.
type Selector struct {
	Tag           string
	ClassContains string
	IDContains    string
	AttrContains  map[string]string // attribute name -> substring
}

func (s Selector) matches(e *Element) bool {
	if s.Tag != "" && !strings.EqualFold(s.Tag, e.Tag) {
		return false
	}
	if s.ClassContains != "" && !containsFold(e.Attr("class"), s.ClassContains) {
		return false
	}
	if s.IDContains != "" && !containsFold(e.Attr("id"), s.IDContains) {
		return false
	}
	for name, sub := range s.AttrContains {
		if !containsFold(e.Attr(name), sub) {
			return false
		}
	}
	return true
}

// Page is a point-in-time snapshot of a monitored browser page.
type Page struct {
	URL      string
	Hostname string
	Path     string

	elements []*Element
	bodyText string
}

// Parse builds a snapshot from the page address and raw HTML. Script,
// style and noscript subtrees are dropped so inlined code never leaks
// into text scanning.
func Parse(rawURL, rawHTML string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(fixEncoding(rawHTML)))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	p := &Page{
		URL:      rawURL,
		Hostname: strings.ToLower(u.Hostname()),
		Path:     strings.ToLower(u.Path),
	}
	p.collect(doc)

	var b strings.Builder
	collectText(doc, &b)
	p.bodyText = collapseSpace(b.String())

	return p, nil
}

// VisibleText is the full visible text of the page, whitespace collapsed.
func (p *Page) VisibleText() string {
	return p.bodyText
}

// Elements returns every visible element in document order.
func (p *Page) Elements() []*Element {
	return p.elements
}

// Query returns all elements matching the selector, in document order.
func (p *Page) Query(sel Selector) []*Element {
	var out []*Element
	for _, e := range p.elements {
		if sel.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// QueryAny reports whether any of the selectors matches at least one element.
func (p *Page) QueryAny(sels []Selector) bool {
	for _, sel := range sels {
		if len(p.Query(sel)) > 0 {
			return true
		}
	}
	return false
}

func skippedTag(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

func (p *Page) collect(n *html.Node) {
	if n.Type == html.ElementNode {
		if skippedTag(n.Data) {
			return
		}
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		var b strings.Builder
		collectText(n, &b)
		p.elements = append(p.elements, &Element{
			Tag:   n.Data,
			Attrs: attrs,
			Text:  collapseSpace(b.String()),
		})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collect(c)
	}
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	if n.Type == html.ElementNode && skippedTag(n.Data) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fixEncoding recovers snapshots sent in a legacy single-byte encoding.
func fixEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	decoder := charmap.Windows1251.NewDecoder()
	fixed, err := decoder.String(s)
	if err == nil && utf8.ValidString(fixed) {
		return fixed
	}

	return strings.ToValidUTF8(s, "")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
