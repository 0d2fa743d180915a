// Package author matches author queries against bibliography entries.
package author

import (
	"strings"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/reference"
)

// Query is a parsed author filter such as "Zhu", "Zining Zhu" or "Zhu, Z".
type Query struct {
	First string // may be empty for last-name-only queries
	Last  string
}

// ParseQuery parses an author filter string.
//
//   - "Zhu"        → last="Zhu"
//   - "Zining Zhu" → first="Zining", last="Zhu"
//   - "Zhu, Z"     → first="Z", last="Zhu"
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		a := reference.ParseName(input)
		return Query{First: a.First, Last: a.Last}
	}

	parts := strings.Fields(input)
	last := parts[len(parts)-1]
	return Query{First: strings.Join(parts[:len(parts)-1], " "), Last: last}
}

// IsEmpty reports whether the query would match nothing in particular.
func (q Query) IsEmpty() bool {
	return q.Last == ""
}

// Matches checks last name case-insensitively and, when given, the first name
// as a case-insensitive prefix, so "Frank" matches "Frank R." while "Zh"
// never matches the last name "Zhu".
func (q Query) Matches(a reference.Author) bool {
	if !strings.EqualFold(q.Last, a.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(a.First), strings.ToLower(q.First))
}

// MatchesAny checks if the query matches any author in the list.
func (q Query) MatchesAny(authors []reference.Author) bool {
	for _, a := range authors {
		if q.Matches(a) {
			return true
		}
	}
	return false
}

// MatchesEntry checks the entry's author field.
func (q Query) MatchesEntry(e bibtex.Entry) bool {
	return q.MatchesAny(reference.ParseAuthors(e.Get(bibtex.FieldAuthor)))
}
