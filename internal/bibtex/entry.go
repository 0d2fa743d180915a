// Package bibtex parses BibTeX bibliography files into ordered entries.
package bibtex

import (
	"strconv"
	"strings"
)

// Entry types with special venue handling.
const (
	TypeArticle       = "article"
	TypeInproceedings = "inproceedings"
)

// Well-known field names.
const (
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldJournal     = "journal"
	FieldBooktitle   = "booktitle"
	FieldYear        = "year"
	FieldURL         = "url"
	FieldBlog        = "blog"
	FieldAbstract    = "abstract"
	FieldKeywords    = "keywords"
	FieldAuthorStars = "_author_stars"
	FieldBibID       = "bibid"
	FieldSelected    = "selected"
)

// Entry is one bibliography record.
type Entry struct {
	Key    string            `json:"key"`
	Type   string            `json:"type"` // lower-cased, e.g. "article"
	Fields map[string]string `json:"fields"`

	// order keeps field names in file order for re-serialization.
	order []string
}

// Has reports whether the entry carries the field at all, even if empty.
func (e Entry) Has(name string) bool {
	_, ok := e.Fields[strings.ToLower(name)]
	return ok
}

// Get returns a field value, or "" when the field is absent.
func (e Entry) Get(name string) string {
	return e.Fields[strings.ToLower(name)]
}

// FieldNames returns field names in the order they appeared in the source.
func (e Entry) FieldNames() []string {
	if len(e.order) == len(e.Fields) {
		return append([]string(nil), e.order...)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return names
}

// Set assigns a field, remembering first-seen order.
func (e *Entry) Set(name, value string) {
	name = strings.ToLower(name)
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[name]; !exists {
		e.order = append(e.order, name)
	}
	e.Fields[name] = value
}

// Keywords splits the keywords field on commas and trims each token.
// Order is preserved; an absent field yields nil.
func (e Entry) Keywords() []string {
	if !e.Has(FieldKeywords) {
		return nil
	}
	return SplitKeywords(e.Get(FieldKeywords))
}

// SplitKeywords splits a comma-separated keyword string into trimmed tokens.
func SplitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// HasKeyword reports whether keyword is one of the entry's keyword tokens.
func (e Entry) HasKeyword(keyword string) bool {
	for _, k := range e.Keywords() {
		if k == keyword {
			return true
		}
	}
	return false
}

// AuthorStars parses the _author_stars field, a comma-separated list of
// zero-based author positions marked as co-first authors.
// Tokens that are not integers are ignored.
func (e Entry) AuthorStars() map[int]bool {
	raw := e.Get(FieldAuthorStars)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	stars := make(map[int]bool)
	for _, tok := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		stars[n] = true
	}
	return stars
}

// ID returns the identifier used for list items: the bibid field when
// present, otherwise the citation key.
func (e Entry) ID() string {
	if id := e.Get(FieldBibID); id != "" {
		return id
	}
	return e.Key
}
