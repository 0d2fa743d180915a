package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindSiteRoot(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("title: Lab\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "img", "people")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		start string
	}{
		{"from root", tmpDir},
		{"from nested dir", nested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindSiteRoot(tt.start)
			if err != nil {
				t.Fatalf("FindSiteRoot() error = %v", err)
			}
			if got != tmpDir {
				t.Errorf("FindSiteRoot() = %q, want %q", got, tmpDir)
			}
		})
	}
}

func TestFindSiteRoot_NotFound(t *testing.T) {
	_, err := FindSiteRoot(t.TempDir())
	if !errors.Is(err, ErrNoSite) {
		t.Errorf("FindSiteRoot() error = %v, want ErrNoSite", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	yml := "hostname: lab.example.edu\nhighlight_name: Ada Lovelace\nkeywords: [phylogenetics, immunology]\n"
	if err := os.WriteFile(ConfigPath(root), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	want.Hostname = "lab.example.edu"
	want.HighlightName = "Ada Lovelace"
	want.Keywords = []string{"phylogenetics", "immunology"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Title = "Evolution Lab"
	cfg.RateLimit = 0.5

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"bad yaml", "keywords: [unclosed\n"},
		{"negative rate", "rate_limit: -1\n"},
		{"non-http remote", "remote_bib_url: ftp://x/pubs.bib\n"},
		{"duplicate keyword", "keywords: [a, a]\n"},
		{"blank keyword", "keywords: ['  ']\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(ConfigPath(root), []byte(tt.yml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(root); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestBibSource(t *testing.T) {
	cfg := Default()
	if got := cfg.BibSource(); got != DefaultRemoteBibURL {
		t.Errorf("BibSource() without hostname = %q, want remote", got)
	}
	cfg.Hostname = "lab.example.edu"
	if got := cfg.BibSource(); got != DefaultBibPath {
		t.Errorf("BibSource() with hostname = %q, want %q", got, DefaultBibPath)
	}
}

func TestFilterKeywords(t *testing.T) {
	cfg := &Config{Keywords: []string{"all", "genomics", "viz"}}
	want := []string{"all", "genomics", "viz"}
	if diff := cmp.Diff(want, cfg.FilterKeywords()); diff != "" {
		t.Errorf("FilterKeywords() mismatch (-want +got):\n%s", diff)
	}
	if got := (&Config{}).FilterKeywords(); len(got) != 1 || got[0] != "all" {
		t.Errorf("FilterKeywords() on empty = %v", got)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("/site", "data.json"); got != "/site/data.json" {
		t.Errorf("Resolve() relative = %q", got)
	}
	if got := Resolve("/site", "/abs/data.json"); got != "/abs/data.json" {
		t.Errorf("Resolve() absolute = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/lab"); got != filepath.Join(home, "lab") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got := ExpandPath("lab"); got != "lab" {
		t.Errorf("ExpandPath() = %q, want unchanged", got)
	}
}
