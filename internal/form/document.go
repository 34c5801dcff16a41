// Package form locates raw field values inside rendered azstat form markup.
//
// The forms are JSF pages whose inputs carry positional, convention-based
// names ("tab1:3:j_idt51:j_idt55"). The locator indexes the markup once and
// answers positional lookups; it never fails on absent or malformed fields,
// only on unreadable input.
package form

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Document is an indexed form page. It is immutable after Parse and safe
// for concurrent readers.
type Document struct {
	fields     map[string]string // input name -> value attribute
	inputOrder []string          // input names in document order
	selects    []Select          // selects in document order
	tables     [][][]string      // per table: rows of trimmed cell text
	text       string            // concatenated text content
}

// Select is a <select> element with its chosen option value.
type Select struct {
	Name     string
	Selected string
}

// Parse reads form markup and builds the field index. The HTML parser is
// tolerant of broken markup, so the only failure mode is an unreadable
// reader.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "form: parse markup")
	}

	doc := &Document{fields: make(map[string]string)}
	var text strings.Builder
	walk(root, doc, &text)
	doc.text = text.String()
	return doc, nil
}

func walk(n *html.Node, doc *Document, text *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		text.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "input":
		name := attr(n, "name")
		if name != "" {
			if _, dup := doc.fields[name]; !dup {
				doc.fields[name] = attr(n, "value")
				doc.inputOrder = append(doc.inputOrder, name)
			}
		}
	case n.Type == html.ElementNode && n.Data == "select":
		doc.selects = append(doc.selects, Select{
			Name:     attr(n, "name"),
			Selected: selectedOption(n),
		})
	case n.Type == html.ElementNode && n.Data == "table":
		doc.tables = append(doc.tables, tableCells(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, doc, text)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// selectedOption returns the value of the option carrying the selected
// attribute. An untouched dropdown has none; its Selected stays empty so
// downstream defaults apply instead of whatever option is listed first.
func selectedOption(sel *html.Node) string {
	var chosen string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			if chosen == "" && hasAttr(n, "selected") {
				chosen = attr(n, "value")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(sel)
	return chosen
}

func tableCells(table *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(nodeText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(table)
	return rows
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

// Field returns the raw value of the exactly-named input field.
// The second result is false when no such field exists.
func (d *Document) Field(name string) (string, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// InputNames returns all input field names in document order.
func (d *Document) InputNames() []string {
	return d.inputOrder
}

// Selects returns all select elements in document order.
func (d *Document) Selects() []Select {
	return d.selects
}

// TableRows yields every table row's cell texts, across all tables, in
// document order.
func (d *Document) TableRows() [][]string {
	var rows [][]string
	for _, t := range d.tables {
		rows = append(rows, t...)
	}
	return rows
}

// Text returns the page's concatenated text content.
func (d *Document) Text() string {
	return d.text
}
