// Package about implements the "show selected publications" switch on the
// about page as a two-state machine.
package about

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/matsen/labpage/internal/dom"
)

// Element ids and classes the about page provides.
const (
	SwitchID   = "show-selected"
	TitleID    = "pubs_title"
	OtherClass = "other"
)

// State is which publications the about page lists.
type State int

const (
	// All lists every publication.
	All State = iota
	// SelectedOnly hides publications marked "other".
	SelectedOnly
)

func (s State) String() string {
	if s == SelectedOnly {
		return "selected"
	}
	return "all"
}

// Title is the heading shown for the state.
func (s State) Title() string {
	if s == SelectedOnly {
		return "Selected Publications"
	}
	return "All Publications"
}

// Transition maps the checkbox state to the page state. It depends only on
// the checkbox, so handling the same click twice lands in the same state.
func Transition(checked bool) State {
	if checked {
		return SelectedOnly
	}
	return All
}

// Apply brings the document in line with state. Elements already in the
// target visibility are left alone, so applying a state twice changes
// nothing the second time.
func Apply(doc *dom.Document, state State, speed dom.Speed) error {
	for _, n := range doc.GetElementsByClass(OtherClass) {
		if state == SelectedOnly {
			doc.SlideUp(n, speed)
		} else {
			doc.SlideDown(n, speed)
		}
	}

	title, err := doc.MustElementByID(TitleID)
	if err != nil {
		return err
	}
	doc.SetText(title, state.Title())
	return nil
}

// Toggle binds the switch checkbox of a document to Apply.
type Toggle struct {
	doc   *dom.Document
	state State
}

// NewToggle creates a toggle for doc.
func NewToggle(doc *dom.Document) *Toggle {
	return &Toggle{doc: doc}
}

// Init applies the current checkbox state without animation.
func (t *Toggle) Init() error {
	return t.run(dom.Immediate)
}

// OnClick applies the current checkbox state with animation.
func (t *Toggle) OnClick() error {
	return t.run(dom.Animated)
}

// SetChecked sets the checkbox, as a click on it would, and applies it.
func (t *Toggle) SetChecked(checked bool) error {
	box, err := t.checkbox()
	if err != nil {
		return err
	}
	dom.SetChecked(box, checked)
	return t.OnClick()
}

// State returns the last applied state.
func (t *Toggle) State() State {
	return t.state
}

func (t *Toggle) run(speed dom.Speed) error {
	box, err := t.checkbox()
	if err != nil {
		return err
	}
	state := Transition(dom.Checked(box))
	if err := Apply(t.doc, state, speed); err != nil {
		return err
	}
	t.state = state
	return nil
}

func (t *Toggle) checkbox() (*html.Node, error) {
	wrapper, err := t.doc.MustElementByID(SwitchID)
	if err != nil {
		return nil, err
	}
	box := dom.FirstDescendant(wrapper, "input")
	if box == nil {
		return nil, fmt.Errorf("%w: #%s input", dom.ErrNotFound, SwitchID)
	}
	return box, nil
}
