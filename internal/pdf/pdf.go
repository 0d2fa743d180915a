// Package pdf inspects PDF files linked from the bibliography.
package pdf

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotLocal is returned by ResolvePath for links that are not local PDFs.
var ErrNotLocal = errors.New("not a local PDF link")

// doiPattern matches 10.XXXX/... where XXXX is 4 to 9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Info summarizes a PDF.
type Info struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	DOI   string `json:"doi,omitempty"`
}

// IsLocal reports whether link points at a PDF inside the site rather than
// on another host.
func IsLocal(link string) bool {
	if link == "" {
		return false
	}
	u, err := url.Parse(link)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	return strings.EqualFold(filepath.Ext(u.Path), ".pdf")
}

// ResolvePath maps a local PDF link to a path under root. Links that would
// escape root are rejected.
func ResolvePath(root, link string) (string, error) {
	if !IsLocal(link) {
		return "", fmt.Errorf("%w: %s", ErrNotLocal, link)
	}
	u, _ := url.Parse(link)
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(u.Path, "/")))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("PDF link %s leaves the site root", link)
	}
	return filepath.Join(root, rel), nil
}

// Inspect opens the PDF at path and reads its page count and the first DOI
// printed on its first pages.
func Inspect(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("PDF not found: %s", path)
		}
		return nil, fmt.Errorf("checking PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	info := &Info{Path: path, Pages: r.NumPage()}
	if info.Pages == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", path)
	}

	// DOI is usually on the first page.
	maxPages := 3
	if info.Pages < maxPages {
		maxPages = info.Pages
	}
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := FindDOI(text); doi != "" {
			info.DOI = doi
			break
		}
	}
	return info, nil
}

// FindDOI returns the first plausible DOI in text.
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// SameDOI compares DOIs case-insensitively, ignoring a resolver prefix.
func SameDOI(a, b string) bool {
	return strings.EqualFold(stripResolver(a), stripResolver(b))
}

func stripResolver(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, p := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi:"} {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			return doi[len(p):]
		}
	}
	return doi
}

func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}
