// Package check lints the site sources for problems that render silently:
// entries that never show, empty venues, names split by the author
// formatter, and PDF links that do not open.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/pdf"
	"github.com/matsen/labpage/internal/reference"
	"github.com/matsen/labpage/internal/team"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a source.
type Issue struct {
	Source   string   `json:"source"`
	Key      string   `json:"key"`
	Field    string   `json:"field,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s: %s %s.%s: %s", i.Severity, i.Source, i.Key, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", i.Severity, i.Source, i.Key, i.Message)
}

// Report collects issues.
type Report struct {
	Issues   []Issue `json:"issues"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
}

// OK reports whether no errors were found. Warnings do not count.
func (r *Report) OK() bool {
	return r.Errors == 0
}

func (r *Report) add(i Issue) {
	r.Issues = append(r.Issues, i)
	if i.Severity == SeverityError {
		r.Errors++
	} else {
		r.Warnings++
	}
}

// Options configures the bibliography checks.
type Options struct {
	Root      string   // site root for resolving local links
	Source    string   // name used in issues
	Keywords  []string // configured filter keywords; nil skips the unknown keyword check
	CheckPDFs bool
}

// Bibliography lints parsed entries into r.
func Bibliography(r *Report, entries []bibtex.Entry, opts Options) {
	known := make(map[string]bool, len(opts.Keywords))
	for _, k := range opts.Keywords {
		known[k] = true
	}
	seen := make(map[string]string)

	for _, e := range entries {
		issue := func(sev Severity, field, format string, args ...any) {
			r.add(Issue{Source: opts.Source, Key: e.Key, Field: field, Severity: sev, Message: fmt.Sprintf(format, args...)})
		}

		if prev, dup := seen[e.ID()]; dup {
			issue(SeverityError, "", "id %q already used by %s", e.ID(), prev)
		} else {
			seen[e.ID()] = e.Key
		}

		for _, f := range []string{bibtex.FieldTitle, bibtex.FieldAuthor, bibtex.FieldYear} {
			if strings.TrimSpace(e.Get(f)) == "" {
				issue(SeverityError, f, "missing")
			}
		}

		venue := bibtex.FieldJournal
		if e.Type == bibtex.TypeInproceedings {
			venue = bibtex.FieldBooktitle
		}
		if !e.Has(venue) {
			issue(SeverityWarning, venue, "missing, venue line renders empty")
		}

		if !e.Has(bibtex.FieldAbstract) {
			issue(SeverityWarning, bibtex.FieldAbstract, "missing, entry is never listed")
		} else if !e.Has(bibtex.FieldKeywords) {
			issue(SeverityWarning, bibtex.FieldKeywords, "missing, entry only shows under \"all\"")
		}

		if opts.Keywords != nil {
			for _, k := range e.Keywords() {
				if k != "" && !known[k] {
					issue(SeverityWarning, bibtex.FieldKeywords, "%q has no filter button", k)
				}
			}
		}

		checkAuthors(e, issue)

		if opts.CheckPDFs && pdf.IsLocal(e.Get(bibtex.FieldURL)) {
			checkPDF(e, opts.Root, issue)
		}
	}
}

type issueFunc func(sev Severity, field, format string, args ...any)

// checkAuthors flags author lists the display formatter will cut apart. It
// splits on the substring "and", so any name containing it gains segments.
func checkAuthors(e bibtex.Entry, issue issueFunc) {
	line := e.Get(bibtex.FieldAuthor)
	if line == "" {
		return
	}
	authors := reference.ParseAuthors(line)
	if segments := strings.Count(line, "and") + 1; segments != len(authors) {
		var split []string
		for _, a := range authors {
			if strings.Contains(a.FullName(), "and") {
				split = append(split, a.FullName())
			}
		}
		issue(SeverityWarning, bibtex.FieldAuthor, "names containing \"and\" are split on display: %s", strings.Join(split, "; "))
	}
	for pos := range e.AuthorStars() {
		if pos < 0 || pos >= len(authors) {
			issue(SeverityWarning, bibtex.FieldAuthorStars, "position %d is out of range for %d authors", pos, len(authors))
		}
	}
}

func checkPDF(e bibtex.Entry, root string, issue issueFunc) {
	path, err := pdf.ResolvePath(root, e.Get(bibtex.FieldURL))
	if err != nil {
		issue(SeverityError, bibtex.FieldURL, "%v", err)
		return
	}
	info, err := pdf.Inspect(path)
	if err != nil {
		issue(SeverityError, bibtex.FieldURL, "%v", err)
		return
	}
	if doi := e.Get("doi"); doi != "" && info.DOI != "" && !pdf.SameDOI(doi, info.DOI) {
		issue(SeverityWarning, "doi", "PDF prints DOI %s", info.DOI)
	}
}

// Roster lints team members into r. Pictures are checked under root/img.
func Roster(r *Report, members []team.Member, root, source string) {
	for i, m := range members {
		key := m.Name
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		issue := func(sev Severity, field, format string, args ...any) {
			r.add(Issue{Source: source, Key: key, Field: field, Severity: sev, Message: fmt.Sprintf(format, args...)})
		}

		if m.Name == "" {
			issue(SeverityError, "Name", "missing")
		}
		known := false
		for _, s := range team.StatusOrder {
			if m.Status == s {
				known = true
			}
		}
		if !known {
			issue(SeverityWarning, "Status", "%q is not rendered in any group", m.Status)
		}
		if m.Picture == "" {
			issue(SeverityWarning, "Picture", "missing")
		} else if root != "" {
			if _, err := os.Stat(filepath.Join(root, "img", m.Picture)); err != nil {
				issue(SeverityWarning, "Picture", "img/%s not found", m.Picture)
			}
		}
	}
}
