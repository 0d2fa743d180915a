package bibtex

import (
	"fmt"
	"strings"
)

// Format converts an entry back to BibTeX text, fields in source order.
func Format(e Entry) string {
	var b strings.Builder

	typ := e.Type
	if typ == "" {
		typ = "misc"
	}
	b.WriteString(fmt.Sprintf("@%s{%s,\n", typ, e.Key))
	for _, name := range e.FieldNames() {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", name, e.Fields[name]))
	}
	b.WriteString("}\n")

	return b.String()
}

// FormatList converts multiple entries to BibTeX, separated by blank lines.
func FormatList(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = Format(e)
	}
	return strings.Join(parts, "\n")
}
