// Package dom is a small in-memory document model used to render and
// exercise page behavior without a browser.
//
// Nodes are golang.org/x/net/html nodes; Document adds lookups, inline style
// handling and a log of show/hide effects standing in for animations.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotFound is returned when a required element is missing.
var ErrNotFound = errors.New("element not found")

// Document is a parsed HTML document plus its effect log.
type Document struct {
	root    *html.Node
	effects []Effect
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses a document held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// GetElementByID returns the first element with the id, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	return findFirst(d.root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// MustElementByID is GetElementByID returning ErrNotFound instead of nil.
func (d *Document) MustElementByID(id string) (*html.Node, error) {
	n := d.GetElementByID(id)
	if n == nil {
		return nil, fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	return n, nil
}

// GetElementsByClass returns elements carrying the class, in document order.
func (d *Document) GetElementsByClass(class string) []*html.Node {
	return FindAll(d.root, func(n *html.Node) bool {
		return HasClass(n, class)
	})
}

// FirstDescendant returns the first element below n with the tag name.
func FirstDescendant(n *html.Node, tag string) *html.Node {
	return findFirst(n, func(c *html.Node) bool {
		return c != n && c.Data == tag
	})
}

// FindAll walks the subtree at n and returns matching elements.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Empty removes every child of n.
func (d *Document) Empty(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Append adds detached nodes as the last children of parent.
func (d *Document) Append(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		parent.AppendChild(c)
	}
}

// AppendHTML parses raw markup in the context of parent and appends it.
func (d *Document) AppendHTML(parent *html.Node, raw string) error {
	nodes, err := Fragment(parent, raw)
	if err != nil {
		return err
	}
	d.Append(parent, nodes...)
	return nil
}

// SetText replaces the children of n with a single text node.
func (d *Document) SetText(n *html.Node, text string) {
	d.Empty(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the whole document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Fragment parses raw markup as the children of a context element.
func Fragment(context *html.Node, raw string) ([]*html.Node, error) {
	if context == nil {
		context = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// OuterHTML renders n itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Text returns the concatenated text content below n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
