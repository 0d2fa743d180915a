// Package reference defines author name types shared by the renderers.
package reference

import (
	"regexp"
	"strings"
)

// Author represents a paper author as parsed from a "Last, First" name.
type Author struct {
	First string `json:"first"` // First/given name(s)
	Last  string `json:"last"`  // Last/family name
}

// FullName formats the author as "First Last".
// An author without a first name renders the last name alone.
func (a Author) FullName() string {
	if a.First == "" {
		return a.Last
	}
	return a.First + " " + a.Last
}

// ParseName splits a single "Last, First" segment. Text after a second comma
// is ignored; a segment without a comma is treated as a last name only.
func ParseName(segment string) Author {
	parts := strings.Split(segment, ",")
	a := Author{Last: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		a.First = strings.TrimSpace(parts[1])
	}
	return a
}

// andSeparator matches the BibTeX "and" keyword between names.
var andSeparator = regexp.MustCompile(`\s+and\s+`)

// ParseAuthors parses a BibTeX author list, splitting on the word "and".
// Unlike the display formatter, names containing "and" as a substring
// (e.g. "Alexander") are kept intact.
func ParseAuthors(line string) []Author {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	segments := andSeparator.Split(line, -1)
	authors := make([]Author, 0, len(segments))
	for _, seg := range segments {
		authors = append(authors, ParseName(seg))
	}
	return authors
}
