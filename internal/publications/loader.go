package publications

import (
	"context"
	"fmt"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/fetch"
)

// LocalSource is the bibliography path used when the page has a host name.
const LocalSource = "publications.bib"

// ResolveSource picks the bibliography location from the page host name:
// an empty host (a page opened from disk) uses the remote fallback URL,
// anything else uses the local relative path.
func ResolveSource(hostname, remoteURL, localPath string) string {
	if hostname == "" {
		return remoteURL
	}
	if localPath == "" {
		return LocalSource
	}
	return localPath
}

// LoadBibliography fetches and parses the bibliography at source. There is
// no retry. A parse error for a truncated file is returned along with the
// entries read before it.
func LoadBibliography(ctx context.Context, f fetch.Fetcher, source string) ([]bibtex.Entry, error) {
	body, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching bibliography: %w", err)
	}
	entries, err := bibtex.Parse(string(body))
	if err != nil {
		return entries, fmt.Errorf("parsing bibliography %s: %w", source, err)
	}
	return entries, nil
}

// Loader binds a fetcher to a resolved bibliography source.
type Loader struct {
	fetcher fetch.Fetcher
	source  string
}

// NewLoader creates a loader for source.
func NewLoader(f fetch.Fetcher, source string) *Loader {
	return &Loader{fetcher: f, source: source}
}

// Source returns the resolved location.
func (l *Loader) Source() string {
	return l.source
}

// Load fetches and parses the bibliography.
func (l *Loader) Load(ctx context.Context) ([]bibtex.Entry, error) {
	return LoadBibliography(ctx, l.fetcher, l.source)
}
