package team

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/matsen/labpage/internal/dom"
)

const roster = `[
  {"Name": "Ada Alum", "Picture": "ada.jpg", "Homepage": "https://ada.example", "Program": "MSc", "Status": "alumni"},
  {"Name": "Ben Current", "Picture": "ben.jpg", "Homepage": "https://ben.example", "Title": "PhD student", "Program": "CS", "Coadvise": "co-advised with Prof. X", "Status": "current"},
  {"Name": "Cy Current", "Picture": "cy.jpg", "Homepage": "https://cy.example", "Program": "Engineering", "Status": "current"}
]`

const page = `<html><body>
<div id="team-container-current"></div>
<div id="team-container-alumni"></div>
</body></html>`

type memoryFetcher map[string]string

func (m memoryFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	return []byte(m[source]), nil
}

func cardNames(container *html.Node) []string {
	var names []string
	for _, h := range dom.FindAll(container, func(n *html.Node) bool { return dom.HasClass(n, "card-title") }) {
		names = append(names, dom.Text(h))
	}
	return names
}

func TestGroupByStatus(t *testing.T) {
	members, err := Decode([]byte(roster))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	groups := GroupByStatus(members)
	got := map[Status][]string{}
	for _, g := range groups {
		for _, m := range g.Members {
			got[g.Status] = append(got[g.Status], m.Name)
		}
	}
	want := map[Status][]string{
		StatusCurrent: {"Ben Current", "Cy Current"},
		StatusAlumni:  {"Ada Alum"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupByStatus() mismatch (-want +got):\n%s", diff)
	}
	if groups[0].Status != StatusCurrent || groups[1].Status != StatusAlumni {
		t.Errorf("groups out of order: %v, %v", groups[0].Status, groups[1].Status)
	}
}

func TestRender(t *testing.T) {
	members, err := Load(context.Background(), memoryFetcher{DefaultSource: roster}, DefaultSource)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if err := Render(doc, members); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	current := cardNames(doc.GetElementByID("team-container-current"))
	if diff := cmp.Diff([]string{"Ben Current", "Cy Current"}, current); diff != "" {
		t.Errorf("current container mismatch (-want +got):\n%s", diff)
	}
	alumni := cardNames(doc.GetElementByID("team-container-alumni"))
	if diff := cmp.Diff([]string{"Ada Alum"}, alumni); diff != "" {
		t.Errorf("alumni container mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_EmptyGroupRendersNothing(t *testing.T) {
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	only := []Member{{Name: "Ben", Program: "CS", Status: StatusCurrent}}
	if err := Render(doc, only); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if alumni := doc.GetElementByID("team-container-alumni"); alumni.FirstChild != nil {
		t.Errorf("alumni container should stay empty, got %q", dom.InnerHTML(alumni))
	}
}

func TestCard_OptionalFields(t *testing.T) {
	card, err := Card(Member{Name: "Cy", Picture: "cy.jpg", Homepage: "https://cy.example", Program: "Engineering"})
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}

	text := strings.Join(strings.Fields(card), " ")
	if !strings.Contains(text, `<p class="card-text"> Engineering<br> </p>`) {
		t.Errorf("card text line should hold only the program, got:\n%s", card)
	}
	for _, bad := range []string{"undefined", ", Engineering"} {
		if strings.Contains(card, bad) {
			t.Errorf("card should not contain %q:\n%s", bad, card)
		}
	}
	if !strings.Contains(card, `src="img/cy.jpg"`) || !strings.Contains(card, `alt="picture of Cy"`) {
		t.Errorf("card image attributes wrong:\n%s", card)
	}
}

func TestCard_AllFields(t *testing.T) {
	card, err := Card(Member{Name: "Ben", Title: "PhD student", Program: "CS", Coadvise: "co-advised"})
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}
	text := strings.Join(strings.Fields(card), " ")
	if !strings.Contains(text, "PhD student, CS<br> co-advised<br>") {
		t.Errorf("card text line wrong:\n%s", card)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte(`{"not": "an array"}`)); err == nil {
		t.Error("Decode() error = nil for non-array roster")
	}
}
