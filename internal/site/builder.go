// Package site assembles the homepage from its sources and writes the static
// build.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/labpage/internal/about"
	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/config"
	"github.com/matsen/labpage/internal/dom"
	"github.com/matsen/labpage/internal/fetch"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/team"
)

// Mode selects how the page's client script drives the interactive parts.
type Mode string

const (
	// ModeStatic loads per-filter fragments and toggles panels in the page.
	ModeStatic  Mode = "static"
	// ModePreview asks the preview server for every transition.
	ModePreview Mode = "preview"
)

// Options configures a Builder.
type Options struct {
	Mode        Mode // empty means ModeStatic
	Title       string
	BibSource   string
	TeamSource  string
	AboutSource string // empty means no about text
	Highlight   string
	// Keywords are the filter buttons after "all". Nil derives them from
	// the bibliography.
	Keywords []string
}

// OptionsFromConfig maps site configuration to builder options.
func OptionsFromConfig(cfg *config.Config) Options {
	var keywords []string
	if len(cfg.Keywords) > 0 {
		keywords = cfg.FilterKeywords()[1:]
	}
	return Options{
		Title:       cfg.Title,
		BibSource:   cfg.BibSource(),
		TeamSource:  cfg.TeamPath,
		AboutSource: cfg.AboutPath,
		Highlight:   cfg.HighlightName,
		Keywords:    keywords,
	}
}

// Content is everything loaded from the site sources.
type Content struct {
	Entries []bibtex.Entry
	Members []team.Member
	About   template.HTML
}

// Builder loads the site sources and renders pages from them.
type Builder struct {
	opts    Options
	fetcher fetch.Fetcher
	logger  *zap.Logger
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(f fetch.Fetcher, opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{opts: opts, fetcher: f, logger: logger}
}

// Loader returns a bibliography loader bound to the builder's source.
func (b *Builder) Loader() *publications.Loader {
	return publications.NewLoader(b.fetcher, b.opts.BibSource)
}

// Renderer returns the publications renderer for the builder's options.
func (b *Builder) Renderer() publications.Renderer {
	return publications.Renderer{Highlight: b.opts.Highlight}
}

// Load fetches the bibliography, roster and about text concurrently.
//
// A source that cannot be fetched leaves its section empty and is logged.
// A truncated bibliography keeps the entries read before the break.
func (b *Builder) Load(ctx context.Context) (*Content, error) {
	var c Content
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := publications.LoadBibliography(gctx, b.fetcher, b.opts.BibSource)
		switch {
		case errors.Is(err, bibtex.ErrUnterminated):
			b.logger.Warn("bibliography truncated", zap.String("source", b.opts.BibSource), zap.Error(err))
		case err != nil:
			b.logger.Warn("loading bibliography", zap.String("source", b.opts.BibSource), zap.Error(err))
			entries = nil
		}
		c.Entries = entries
		return nil
	})

	g.Go(func() error {
		members, err := team.Load(gctx, b.fetcher, b.opts.TeamSource)
		if err != nil {
			b.logger.Warn("loading roster", zap.String("source", b.opts.TeamSource), zap.Error(err))
			return nil
		}
		c.Members = members
		return nil
	})

	if b.opts.AboutSource != "" {
		g.Go(func() error {
			src, err := b.fetcher.Fetch(gctx, b.opts.AboutSource)
			if err != nil {
				if !fetch.IsNotFound(err) {
					b.logger.Warn("loading about text", zap.String("source", b.opts.AboutSource), zap.Error(err))
				}
				return nil
			}
			body, err := RenderMarkdown(src)
			if err != nil {
				return fmt.Errorf("about text %s: %w", b.opts.AboutSource, err)
			}
			c.About = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.logger.Debug("sources loaded",
		zap.Int("entries", len(c.Entries)),
		zap.Int("members", len(c.Members)),
		zap.Bool("about", c.About != ""))
	return &c, nil
}

// Build loads the sources and renders the page.
func (b *Builder) Build(ctx context.Context) (*Page, error) {
	c, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.Render(c)
}

// Keywords returns the filter buttons for c, "all" first.
func (b *Builder) Keywords(c *Content) []string {
	keywords := b.opts.Keywords
	if keywords == nil {
		keywords = publications.KeywordSet(c.Entries)
	}
	out := []string{publications.All}
	for _, k := range keywords {
		if k != publications.All {
			out = append(out, k)
		}
	}
	return out
}

// Render builds the page for loaded content in its load-time state: the
// "all" filter active, every abstract closed, team cards in place and the
// about switch applied without animation.
func (b *Builder) Render(c *Content) (*Page, error) {
	keywords := b.Keywords(c)
	files := fragmentFiles(keywords)

	mode := b.opts.Mode
	if mode == "" {
		mode = ModeStatic
	}
	data := pageData{
		Title:  b.opts.Title,
		Mode:   mode,
		Script: ScriptPath,
		About:  c.About,
	}
	for _, k := range keywords {
		data.Buttons = append(data.Buttons, filterButton{Keyword: k, Fragment: fragmentURL(files[k])})
	}
	for _, e := range c.Entries {
		data.Selected = append(data.Selected, selectedItem{
			Title: template.HTML(e.Get(bibtex.FieldTitle)),
			Venue: publications.Venue(e),
			Other: !e.Has(bibtex.FieldSelected),
		})
	}

	var buf bytes.Buffer
	if err := compiledPage.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	doc, err := dom.ParseString(buf.String())
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	if err := b.Renderer().Show(doc, c.Entries, publications.NewFilterState()); err != nil {
		return nil, fmt.Errorf("rendering publications: %w", err)
	}
	if err := team.Render(doc, c.Members); err != nil {
		return nil, fmt.Errorf("rendering team: %w", err)
	}
	if err := about.NewToggle(doc).Init(); err != nil {
		return nil, fmt.Errorf("applying about switch: %w", err)
	}
	doc.ResetEffects()

	fragments := make(map[string]string, len(keywords))
	for _, k := range keywords {
		nodes, err := publications.Render(c.Entries, publications.RenderOptions{
			Highlight: b.opts.Highlight,
			State:     publications.NewFilterState().WithActive(k),
		})
		if err != nil {
			return nil, fmt.Errorf("rendering %s fragment: %w", k, err)
		}
		var frag strings.Builder
		for _, n := range nodes {
			frag.WriteString(dom.OuterHTML(n))
			frag.WriteByte('\n')
		}
		fragments[k] = frag.String()
	}

	return &Page{Doc: doc, Keywords: keywords, Fragments: fragments, Files: files, Content: c}, nil
}
