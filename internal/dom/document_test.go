package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testPage = `<!DOCTYPE html>
<html><body>
<h2 id="title">Old</h2>
<ul id="list"><li class="item other">a</li><li class="item">b</li></ul>
<div id="box" style="color: red; display: none;"></div>
</body></html>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(testPage)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestLookups(t *testing.T) {
	doc := mustParse(t)

	if doc.GetElementByID("title") == nil {
		t.Fatal("GetElementByID(title) = nil")
	}
	if doc.GetElementByID("missing") != nil {
		t.Error("GetElementByID(missing) != nil")
	}
	if _, err := doc.MustElementByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MustElementByID(missing) error = %v, want ErrNotFound", err)
	}
	if got := len(doc.GetElementsByClass("item")); got != 2 {
		t.Errorf("GetElementsByClass(item) returned %d, want 2", got)
	}
	if got := len(doc.GetElementsByClass("other")); got != 1 {
		t.Errorf("GetElementsByClass(other) returned %d, want 1", got)
	}
}

func TestMutations(t *testing.T) {
	doc := mustParse(t)

	title := doc.GetElementByID("title")
	doc.SetText(title, "New <b>")
	if got := Text(title); got != "New <b>" {
		t.Errorf("Text() = %q, want literal text", got)
	}
	if got := InnerHTML(title); got != "New &lt;b&gt;" {
		t.Errorf("InnerHTML() = %q, want escaped text", got)
	}

	list := doc.GetElementByID("list")
	doc.Empty(list)
	if list.FirstChild != nil {
		t.Error("Empty() left children behind")
	}
	if err := doc.AppendHTML(list, `<li>x <u>y</u></li>`); err != nil {
		t.Fatalf("AppendHTML() error = %v", err)
	}
	if got := InnerHTML(list); got != "<li>x <u>y</u></li>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if !strings.Contains(doc.String(), `<ul id="list"><li>x <u>y</u></li></ul>`) {
		t.Errorf("String() missing appended item:\n%s", doc.String())
	}
}

func TestStyle(t *testing.T) {
	doc := mustParse(t)
	box := doc.GetElementByID("box")

	if got := Style(box, "color"); got != "red" {
		t.Errorf("Style(color) = %q, want red", got)
	}
	if !IsHidden(box) {
		t.Error("IsHidden() = false, want true")
	}

	SetStyle(box, "font-weight", "bold")
	SetStyle(box, "display", "")
	if got, _ := Attr(box, "style"); got != "color: red; font-weight: bold;" {
		t.Errorf("style attr = %q", got)
	}

	SetStyle(box, "color", "")
	SetStyle(box, "font-weight", "")
	if _, ok := Attr(box, "style"); ok {
		t.Error("style attribute should be removed when no declarations remain")
	}
}

func TestSlideEffectsAreIdempotent(t *testing.T) {
	doc := mustParse(t)
	title := doc.GetElementByID("title")

	doc.SlideUp(title, Animated)
	doc.SlideUp(title, Animated)
	doc.SlideDown(title, Immediate)
	doc.SlideDown(title, Immediate)
	doc.SlideToggle(title, Animated)

	want := []Effect{
		{Target: "#title", Kind: EffectSlideUp, Speed: Animated},
		{Target: "#title", Kind: EffectSlideDown, Speed: Immediate},
		{Target: "#title", Kind: EffectSlideUp, Speed: Animated},
	}
	if diff := cmp.Diff(want, doc.Effects()); diff != "" {
		t.Errorf("Effects() mismatch (-want +got):\n%s", diff)
	}

	doc.ResetEffects()
	if len(doc.Effects()) != 0 {
		t.Error("ResetEffects() did not clear the log")
	}

	doc.Show(title)
	doc.Hide(title)
	want = []Effect{
		{Target: "#title", Kind: EffectSlideDown, Speed: Immediate},
		{Target: "#title", Kind: EffectSlideUp, Speed: Immediate},
	}
	if diff := cmp.Diff(want, doc.Effects()); diff != "" {
		t.Errorf("Show/Hide effects mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckedAndDescribe(t *testing.T) {
	input := Element("input", "type", "checkbox")
	if Checked(input) {
		t.Error("Checked() = true for fresh input")
	}
	SetChecked(input, true)
	if !Checked(input) {
		t.Error("Checked() = false after SetChecked(true)")
	}
	SetChecked(input, false)
	if Checked(input) {
		t.Error("Checked() = true after SetChecked(false)")
	}

	li := Element("li", "class", "item  other")
	if got := Describe(li); got != "li.item.other" {
		t.Errorf("Describe() = %q, want li.item.other", got)
	}
}
