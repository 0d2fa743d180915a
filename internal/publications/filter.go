package publications

import (
	"github.com/matsen/labpage/internal/bibtex"
)

// All is the filter value that restricts nothing.
const All = "all"

// Visible reports whether an entry is rendered under the keyword filter.
//
// Entries without an abstract are never rendered, not even under All. This
// matches the published site; whether it was intended is an open question,
// so it is kept until someone decides otherwise.
func Visible(e bibtex.Entry, keyword string) bool {
	if !e.Has(bibtex.FieldAbstract) {
		return false
	}
	if keyword != All && !e.HasKeyword(keyword) {
		return false
	}
	return true
}

// Filter returns the entries visible under keyword, in file order.
func Filter(entries []bibtex.Entry, keyword string) []bibtex.Entry {
	var out []bibtex.Entry
	for _, e := range entries {
		if Visible(e, keyword) {
			out = append(out, e)
		}
	}
	return out
}

// KeywordSet returns every keyword used by entries with an abstract, in order
// of first appearance.
func KeywordSet(entries []bibtex.Entry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if !e.Has(bibtex.FieldAbstract) {
			continue
		}
		for _, k := range e.Keywords() {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// FilterState is the UI state of the publications section: the active filter
// button and the set of open abstract panels, keyed by toggle id.
type FilterState struct {
	Active        string
	OpenAbstracts map[string]bool
}

// NewFilterState returns the load-time state: All active, no panel open.
func NewFilterState() FilterState {
	return FilterState{Active: All}
}

// WithActive returns the state for a new filter selection. Re-rendering
// rebuilds every panel closed, so open panels are forgotten.
func (s FilterState) WithActive(keyword string) FilterState {
	return FilterState{Active: keyword}
}

// ToggleAbstract flips one panel and reports whether it is now open.
func (s *FilterState) ToggleAbstract(id string) bool {
	if s.OpenAbstracts == nil {
		s.OpenAbstracts = make(map[string]bool)
	}
	if s.OpenAbstracts[id] {
		delete(s.OpenAbstracts, id)
		return false
	}
	s.OpenAbstracts[id] = true
	return true
}

// IsOpen reports whether the panel is open.
func (s FilterState) IsOpen(id string) bool {
	return s.OpenAbstracts[id]
}
