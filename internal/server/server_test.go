package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/labpage/internal/fetch"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/site"
)

const bib = `
@article{sel,
  title = {Selected Work},
  author = {Lovelace, Ada},
  journal = {Engines},
  year = {1843},
  abstract = {Notes.},
  keywords = {math},
  selected = {true},
}

@article{oth,
  title = {Other Work},
  author = {Babbage, Charles},
  journal = {Letters},
  year = {1822},
  abstract = {Difference engine.},
  keywords = {engineering},
}
`

type memFetcher map[string]string

func (m memFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	body, ok := m[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fetch.ErrNotFound, source)
	}
	return []byte(body), nil
}

func setupServer(t *testing.T, loaderFetcher fetch.Fetcher) *Server {
	t.Helper()
	opts := site.Options{Title: "Lab", BibSource: "publications.bib", TeamSource: "data.json"}
	b := site.NewBuilder(memFetcher{"publications.bib": bib}, opts, nil)
	page, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "img", "ada.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	loader := publications.NewLoader(loaderFetcher, opts.BibSource)
	ctrl := publications.NewController(page.Doc, loader, b.Renderer(), nil)
	return New(Config{Root: root, Assets: []string{"img"}}, ctrl, nil)
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) actionResponse {
	t.Helper()
	var resp actionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})
	if w := do(t, s, "GET", "/healthz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestIndex(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})
	w := do(t, s, "GET", "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`id="display-pubs"`, `value="sel"`, `value="oth"`, `class="filter-btn"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %s", want)
		}
	}
}

func TestSelect(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})

	w := do(t, s, "POST", "/pubs/math")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp.Active != "math" {
		t.Errorf("active = %q, want math", resp.Active)
	}
	if !strings.Contains(resp.HTML, `value="sel"`) || strings.Contains(resp.HTML, `value="oth"`) {
		t.Errorf("html should hold only sel:\n%s", resp.HTML)
	}
	want := []effectJSON{
		{Target: "#display-pubs", Kind: "slideUp", Speed: "animated"},
		{Target: "#display-pubs", Kind: "slideDown", Speed: "animated"},
	}
	if diff := cmp.Diff(want, resp.Effects); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}

	var st stateResponse
	if err := json.NewDecoder(do(t, s, "GET", "/state").Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Active != "math" {
		t.Errorf("state active = %q", st.Active)
	}
}

func TestSelect_FetchFailure(t *testing.T) {
	s := setupServer(t, memFetcher{})
	if w := do(t, s, "POST", "/pubs/math"); w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestAbstractToggle(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})

	tests := []struct {
		name string
		open bool
		kind string
	}{
		{"open", true, "slideDown"},
		{"close", false, "slideUp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, "POST", "/abstract/0")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
			}
			resp := decode(t, w)
			if resp.Open == nil || *resp.Open != tt.open {
				t.Errorf("open = %v, want %v", resp.Open, tt.open)
			}
			want := []effectJSON{{Target: "#abstract-0", Kind: tt.kind, Speed: "animated"}}
			if diff := cmp.Diff(want, resp.Effects); diff != "" {
				t.Errorf("effects mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if w := do(t, s, "POST", "/abstract/99"); w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAbout(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})

	w := do(t, s, "POST", "/about?checked=false")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp.About != "all" || resp.Title != "All Publications" {
		t.Errorf("about = %q, title = %q", resp.About, resp.Title)
	}
	want := []effectJSON{{Target: "#selected-1", Kind: "slideDown", Speed: "animated"}}
	if diff := cmp.Diff(want, resp.Effects); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}

	// Repeating the same state plays nothing.
	if again := decode(t, do(t, s, "POST", "/about?checked=false")); len(again.Effects) != 0 {
		t.Errorf("repeat produced effects %+v", again.Effects)
	}

	if w := do(t, s, "POST", "/about?checked=maybe"); w.Code != http.StatusBadRequest {
		t.Errorf("bad checked status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestStaticAssets(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})
	w := do(t, s, "GET", "/img/ada.jpg")
	if w.Code != http.StatusOK || w.Body.String() != "jpeg" {
		t.Errorf("GET /img/ada.jpg = %d %q", w.Code, w.Body.String())
	}
}

func TestClientScript(t *testing.T) {
	s := setupServer(t, memFetcher{"publications.bib": bib})

	page := do(t, s, "GET", "/").Body.String()
	if !strings.Contains(page, `<script src="`+site.ScriptPath+`"`) {
		t.Fatalf("page does not load %s", site.ScriptPath)
	}

	w := do(t, s, "GET", "/"+site.ScriptPath)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /%s status = %d", site.ScriptPath, w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/javascript") {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Body.String() != string(site.Script()) {
		t.Error("served script differs from the embedded one")
	}
}
