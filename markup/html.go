// Package markup splits HTML into translatable text segments and writes
// translations back without disturbing the surrounding markup.
package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// IgnoredTags are elements whose text is never translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
	"svg":      true,
	"math":     true,
	"kbd":      true,
	"samp":     true,
	"var":      true,
}

// Document is a parsed HTML input with its translatable text nodes.
type Document struct {
	doc      *goquery.Document
	fragment bool
	nodes    []*html.Node
}

// Parse parses content and collects its translatable text nodes in
// document order. Inputs without an <html> element are treated as
// fragments and serialized back as fragments.
func Parse(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{
		doc:      doc,
		fragment: !strings.Contains(strings.ToLower(content), "<html"),
	}

	for _, root := range doc.Nodes {
		d.collect(root)
	}
	return d, nil
}

func (d *Document) collect(n *html.Node) {
	if n.Type == html.ElementNode && skipElement(n) {
		return
	}
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
		d.nodes = append(d.nodes, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collect(c)
	}
}

func skipElement(n *html.Node) bool {
	if IgnoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		switch {
		case attr.Key == "data-no-translate":
			return true
		case attr.Key == "translate" && strings.EqualFold(attr.Val, "no"):
			return true
		}
	}
	return false
}

// Texts returns the trimmed text of every segment, in document order.
// Repeated texts appear once per occurrence.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.nodes))
	for i, n := range d.nodes {
		texts[i] = strings.TrimSpace(n.Data)
	}
	return texts
}

// Len returns the number of translatable segments.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Apply replaces each segment with the translation at the same index,
// keeping the original leading and trailing whitespace.
func (d *Document) Apply(translations []string) error {
	if len(translations) != len(d.nodes) {
		return fmt.Errorf("markup: %d translations for %d segments", len(translations), len(d.nodes))
	}
	for i, n := range d.nodes {
		n.Data = preserveWhitespace(n.Data, translations[i])
	}
	return nil
}

// HTML serializes the document.
func (d *Document) HTML() (string, error) {
	if d.fragment {
		return d.doc.Find("body").Html()
	}
	return d.doc.Html()
}

// SetLang sets the lang attribute on the <html> element of full documents.
func (d *Document) SetLang(lang string) {
	if d.fragment || lang == "" {
		return
	}
	d.doc.Find("html").SetAttr("lang", lang)
}

func preserveWhitespace(original, translated string) string {
	const ws = " \t\n\r"
	leading := original[:len(original)-len(strings.TrimLeft(original, ws))]
	trailing := original[len(strings.TrimRight(original, ws)):]
	return leading + strings.TrimSpace(translated) + trailing
}
