package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates a detached element with attributes given as key, value pairs.
func Element(tag string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// TextNode creates a detached text node.
func TextNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Attr returns the attribute value and whether it is set.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// HasClass reports whether the class attribute contains class.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// Checked reports the checked state of an input element.
func Checked(n *html.Node) bool {
	_, ok := Attr(n, "checked")
	return ok
}

// SetChecked sets or clears the checked attribute.
func SetChecked(n *html.Node, checked bool) {
	if checked {
		SetAttr(n, "checked", "")
		return
	}
	RemoveAttr(n, "checked")
}

type declaration struct {
	prop, value string
}

// parseStyle splits an inline style attribute into ordered declarations.
func parseStyle(s string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{prop: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}

// Style returns one inline style property, or "".
func Style(n *html.Node, prop string) string {
	v, _ := Attr(n, "style")
	prop = strings.ToLower(prop)
	for _, d := range parseStyle(v) {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline style property; an empty value removes it, the way
// assigning "" to element.style[prop] does in a browser.
func SetStyle(n *html.Node, prop, value string) {
	v, _ := Attr(n, "style")
	prop = strings.ToLower(prop)

	decls := parseStyle(v)
	kept := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop == prop {
			if value == "" || replaced {
				continue
			}
			d.value = value
			replaced = true
		}
		kept = append(kept, d)
	}
	if value != "" && !replaced {
		kept = append(kept, declaration{prop: prop, value: value})
	}

	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", formatStyle(kept))
}

// IsHidden reports whether the element is hidden with display: none.
func IsHidden(n *html.Node) bool {
	return Style(n, "display") == "none"
}
