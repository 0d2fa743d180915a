// Package publications renders bibliography entries into the publications
// list of the homepage and handles keyword filtering.
package publications

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/dom"
)

// Element ids and classes the host page provides or the renderer emits.
const (
	ContainerID         = "display-pubs"
	FilterButtonClass   = "filter-btn"
	ItemClass           = "pubitem"
	AbstractClass       = "abstract"
	AbstractButtonClass = "abstract-btn"
	// AbstractPanelPrefix plus the toggle id names an abstract panel.
	AbstractPanelPrefix = "abstract-"
)

// RenderOptions configures item rendering.
type RenderOptions struct {
	Highlight string      // author name to underline
	State     FilterState // panels listed as open render visible
}

// Venue returns the venue line: booktitle for inproceedings, journal for
// everything else, followed by ", " and the year. Missing fields render empty.
func Venue(e bibtex.Entry) string {
	venue := e.Get(bibtex.FieldJournal)
	if e.Type == bibtex.TypeInproceedings {
		venue = e.Get(bibtex.FieldBooktitle)
	}
	return venue + ", " + e.Get(bibtex.FieldYear)
}

// Render builds one list item per entry visible under opts.State.Active.
// Abstract toggles are numbered by the entry's position in entries, so ids
// stay stable across filters.
func Render(entries []bibtex.Entry, opts RenderOptions) ([]*html.Node, error) {
	active := opts.State.Active
	if active == "" {
		active = All
	}

	var items []*html.Node
	for i, e := range entries {
		if !Visible(e, active) {
			continue
		}
		li, err := renderItem(i, e, opts)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", e.Key, err)
		}
		items = append(items, li)
	}
	return items, nil
}

func renderItem(index int, e bibtex.Entry, opts RenderOptions) (*html.Node, error) {
	li := dom.Element("li", "class", ItemClass, "value", e.ID())

	// Title, author and abstract fields hold trusted markup from the
	// bibliography author and are inserted unescaped.
	title := dom.Element("b")
	if err := appendRaw(title, e.Get(bibtex.FieldTitle)); err != nil {
		return nil, err
	}
	li.AppendChild(title)

	authorLine := FormatAuthors(e.Get(bibtex.FieldAuthor), opts.Highlight, e.AuthorStars())
	byline := dom.Element("div")
	if err := appendRaw(byline, authorLine+"<br />"+Venue(e)); err != nil {
		return nil, err
	}
	li.AppendChild(byline)

	buttons := dom.Element("div")
	if e.Has(bibtex.FieldURL) {
		link := dom.Element("a", "href", e.Get(bibtex.FieldURL), "target", "_blank")
		link.AppendChild(dom.TextNode("[paper] "))
		buttons.AppendChild(link)
	}
	if e.Has(bibtex.FieldBlog) {
		link := dom.Element("a", "href", e.Get(bibtex.FieldBlog), "target", "_blank")
		link.AppendChild(dom.TextNode("[blog] "))
		buttons.AppendChild(link)
	}

	id := strconv.Itoa(index)
	toggle := dom.Element("a", "id", id, "class", AbstractButtonClass)
	toggle.AppendChild(dom.TextNode("[abstract]"))
	buttons.AppendChild(toggle)

	panel := dom.Element("div", "id", AbstractPanelPrefix+id, "class", AbstractClass)
	if !opts.State.IsOpen(id) {
		dom.SetStyle(panel, "display", "none")
	}
	body, err := abstractAndKeywords(e.Get(bibtex.FieldAbstract), e.Get(bibtex.FieldKeywords))
	if err != nil {
		return nil, err
	}
	panel.AppendChild(body)
	buttons.AppendChild(panel)

	li.AppendChild(buttons)
	return li, nil
}

// abstractAndKeywords builds the panel body: the abstract markup followed by
// a "Keywords: a, b" line.
func abstractAndKeywords(abstract, keywords string) (*html.Node, error) {
	div := dom.Element("div")
	if err := appendRaw(div, abstract); err != nil {
		return nil, err
	}

	line := dom.Element("div")
	head := dom.Element("b")
	head.AppendChild(dom.TextNode("Keywords: "))
	line.AppendChild(head)

	tokens := bibtex.SplitKeywords(keywords)
	for i, tok := range tokens {
		if i < len(tokens)-1 {
			tok += ", "
		}
		line.AppendChild(dom.TextNode(tok))
	}
	div.AppendChild(line)
	return div, nil
}

func appendRaw(parent *html.Node, raw string) error {
	nodes, err := dom.Fragment(parent, raw)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// Renderer writes rendered entries into a document.
type Renderer struct {
	Highlight string
}

// Show empties the publications container, appends the entries visible
// under state.Active and updates the filter button styles.
func (r Renderer) Show(doc *dom.Document, entries []bibtex.Entry, state FilterState) error {
	container, err := doc.MustElementByID(ContainerID)
	if err != nil {
		return err
	}
	nodes, err := Render(entries, RenderOptions{Highlight: r.Highlight, State: state})
	if err != nil {
		return err
	}
	doc.Empty(container)
	doc.Append(container, nodes...)
	StyleButtons(doc, state.Active)
	return nil
}

// StyleButtons makes the button whose id equals keyword bold and clears the
// weight on every other filter button.
func StyleButtons(doc *dom.Document, keyword string) {
	for _, btn := range doc.GetElementsByClass(FilterButtonClass) {
		if id, _ := dom.Attr(btn, "id"); id == keyword {
			dom.SetStyle(btn, "font-weight", "bold")
		} else {
			dom.SetStyle(btn, "font-weight", "")
		}
	}
}

// ToggleAbstract slides the panel that follows the abstract toggle with the
// given id and records the change in state.
func (r Renderer) ToggleAbstract(doc *dom.Document, state *FilterState, id string) error {
	toggles := dom.FindAll(doc.Root(), func(n *html.Node) bool {
		v, _ := dom.Attr(n, "id")
		return v == id && dom.HasClass(n, AbstractButtonClass)
	})
	if len(toggles) == 0 {
		return fmt.Errorf("%w: abstract toggle %s", dom.ErrNotFound, id)
	}

	panel := toggles[0].NextSibling
	for panel != nil && panel.Type != html.ElementNode {
		panel = panel.NextSibling
	}
	if panel == nil || !dom.HasClass(panel, AbstractClass) {
		return fmt.Errorf("%w: abstract panel for %s", dom.ErrNotFound, id)
	}

	doc.SlideToggle(panel, dom.Animated)
	state.ToggleAbstract(id)
	return nil
}
