package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Speed is how a visibility change is presented.
type Speed int

const (
	// Immediate applies the change with no transition (page load).
	Immediate Speed = iota
	// Animated slides the element over a short duration (user clicks).
	Animated
)

func (s Speed) String() string {
	if s == Animated {
		return "animated"
	}
	return "immediate"
}

// EffectKind names a visibility change.
type EffectKind string

const (
	EffectSlideUp   EffectKind = "slideUp"
	EffectSlideDown EffectKind = "slideDown"
)

// Effect records one visibility transition that actually changed an element.
type Effect struct {
	Target string
	Kind   EffectKind
	Speed  Speed
}

func (e Effect) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Target, e.Speed)
}

// SlideUp hides n. An already hidden element is left alone and no effect is
// recorded, so repeated calls are harmless.
func (d *Document) SlideUp(n *html.Node, speed Speed) {
	if IsHidden(n) {
		return
	}
	SetStyle(n, "display", "none")
	d.effects = append(d.effects, Effect{Target: Describe(n), Kind: EffectSlideUp, Speed: speed})
}

// SlideDown shows n. An already visible element is left alone.
func (d *Document) SlideDown(n *html.Node, speed Speed) {
	if !IsHidden(n) {
		return
	}
	SetStyle(n, "display", "")
	d.effects = append(d.effects, Effect{Target: Describe(n), Kind: EffectSlideDown, Speed: speed})
}

// Show makes n visible without a transition.
func (d *Document) Show(n *html.Node) {
	d.SlideDown(n, Immediate)
}

// Hide hides n without a transition.
func (d *Document) Hide(n *html.Node) {
	d.SlideUp(n, Immediate)
}

// SlideToggle flips the visibility of n.
func (d *Document) SlideToggle(n *html.Node, speed Speed) {
	if IsHidden(n) {
		d.SlideDown(n, speed)
		return
	}
	d.SlideUp(n, speed)
}

// Effects returns the transitions recorded so far.
func (d *Document) Effects() []Effect {
	return append([]Effect(nil), d.effects...)
}

// ResetEffects clears the effect log.
func (d *Document) ResetEffects() {
	d.effects = nil
}

// Describe returns a short selector-like label for n: "#id" when it has an
// id, otherwise "tag.class".
func Describe(n *html.Node) string {
	if id, ok := Attr(n, "id"); ok && id != "" {
		return "#" + id
	}
	if class, ok := Attr(n, "class"); ok && class != "" {
		return n.Data + "." + strings.Join(strings.Fields(class), ".")
	}
	return n.Data
}
