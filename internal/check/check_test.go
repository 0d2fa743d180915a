package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/team"
)

func parse(t *testing.T, text string) []bibtex.Entry {
	t.Helper()
	entries, err := bibtex.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return entries
}

type finding struct {
	Key, Field string
	Severity   Severity
}

func findings(r *Report) []finding {
	var out []finding
	for _, i := range r.Issues {
		out = append(out, finding{i.Key, i.Field, i.Severity})
	}
	return out
}

func TestBibliography(t *testing.T) {
	tests := []struct {
		name string
		bib  string
		opts Options
		want []finding
	}{
		{
			name: "clean entry",
			bib: `@article{ok, title={T}, author={Doe, Jane}, journal={J}, year={2020},
			       abstract={A}, keywords={genomics}}`,
			opts: Options{Keywords: []string{"genomics"}},
		},
		{
			name: "missing required fields",
			bib:  `@article{bare, abstract={A}, keywords={x}, journal={J}}`,
			want: []finding{
				{"bare", "title", SeverityError},
				{"bare", "author", SeverityError},
				{"bare", "year", SeverityError},
			},
		},
		{
			name: "inproceedings needs booktitle",
			bib: `@inproceedings{conf, title={T}, author={Doe, Jane}, journal={J}, year={2020},
			       abstract={A}, keywords={x}}`,
			want: []finding{{"conf", "booktitle", SeverityWarning}},
		},
		{
			name: "no abstract is never listed",
			bib:  `@article{hidden, title={T}, author={Doe, Jane}, journal={J}, year={2020}}`,
			want: []finding{{"hidden", "abstract", SeverityWarning}},
		},
		{
			name: "abstract without keywords",
			bib:  `@article{allonly, title={T}, author={Doe, Jane}, journal={J}, year={2020}, abstract={A}}`,
			want: []finding{{"allonly", "keywords", SeverityWarning}},
		},
		{
			name: "unknown keyword",
			bib: `@article{kw, title={T}, author={Doe, Jane}, journal={J}, year={2020},
			       abstract={A}, keywords={genomics, astrology}}`,
			opts: Options{Keywords: []string{"genomics"}},
			want: []finding{{"kw", "keywords", SeverityWarning}},
		},
		{
			name: "name split by formatter",
			bib: `@article{alex, title={T}, author={Alexander, Sam and Doe, Jane}, journal={J},
			       year={2020}, abstract={A}, keywords={x}}`,
			want: []finding{{"alex", "author", SeverityWarning}},
		},
		{
			name: "star out of range",
			bib: `@article{star, title={T}, author={Doe, Jane}, journal={J}, year={2020},
			       abstract={A}, keywords={x}, _author_stars={0, 3}}`,
			want: []finding{{"star", "_author_stars", SeverityWarning}},
		},
		{
			name: "duplicate id",
			bib: `@article{a, title={T}, author={D, J}, journal={J}, year={1}, abstract={A}, keywords={x}, bibid={same}}
			      @article{b, title={T}, author={D, J}, journal={J}, year={1}, abstract={A}, keywords={x}, bibid={same}}`,
			want: []finding{{"b", "", SeverityError}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Report
			Bibliography(&r, parse(t, tt.bib), tt.opts)
			if diff := cmp.Diff(tt.want, findings(&r)); diff != "" {
				t.Errorf("findings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBibliography_PDFLinks(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "papers"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "papers", "broken.pdf"), []byte("not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	bib := `@article{missing, title={T}, author={D, J}, journal={J}, year={1}, abstract={A}, keywords={x},
	          url={papers/missing.pdf}}
	        @article{broken, title={T}, author={D, J}, journal={J}, year={1}, abstract={A}, keywords={x},
	          url={papers/broken.pdf}}
	        @article{remote, title={T}, author={D, J}, journal={J}, year={1}, abstract={A}, keywords={x},
	          url={https://example.org/paper.pdf}}`

	var r Report
	Bibliography(&r, parse(t, bib), Options{Root: root, CheckPDFs: true})
	want := []finding{
		{"missing", "url", SeverityError},
		{"broken", "url", SeverityError},
	}
	if diff := cmp.Diff(want, findings(&r)); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	if r.OK() {
		t.Error("OK() = true with errors")
	}
}

func TestRoster(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "img", "ada.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	members := []team.Member{
		{Name: "Ada", Picture: "ada.jpg", Status: team.StatusCurrent},
		{Name: "Ben", Picture: "ben.jpg", Status: "visiting"},
		{Picture: "ada.jpg", Status: team.StatusAlumni},
	}
	var r Report
	Roster(&r, members, root, "data.json")

	want := []finding{
		{"Ben", "Status", SeverityWarning},
		{"Ben", "Picture", SeverityWarning},
		{"#2", "Name", SeverityError},
	}
	if diff := cmp.Diff(want, findings(&r)); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	if r.Errors != 1 || r.Warnings != 2 {
		t.Errorf("counts = %d errors, %d warnings", r.Errors, r.Warnings)
	}
}
