package site

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/labpage/internal/dom"
)

// IndexFile is the name of the rendered homepage in the output directory.
const IndexFile = "index.html"

// FragmentDir holds one publications list per filter keyword.
const FragmentDir = "pubs"

// AssetDirs are copied unchanged from the site root into the output.
var AssetDirs = []string{"img", "css"}

// Page is a rendered homepage plus its per-filter publication fragments.
type Page struct {
	Doc       *dom.Document
	Keywords  []string
	Fragments map[string]string // keyword -> <li> items
	Files     map[string]string // keyword -> fragment file name
	Content   *Content
}

// FragmentPath returns the output-relative, slash-separated path of a
// keyword's fragment file.
func (p *Page) FragmentPath(keyword string) string {
	return path.Join(FragmentDir, p.Files[keyword])
}

// Slug maps a keyword to a file name stem that needs no escaping on disk or
// in a URL: lower-case letters, digits and dashes.
func Slug(keyword string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(keyword) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "keyword"
	}
	return slug
}

// fragmentFiles assigns each keyword a distinct fragment file name. Keywords
// whose slugs collide get a numeric suffix in keyword order.
func fragmentFiles(keywords []string) map[string]string {
	files := make(map[string]string, len(keywords))
	taken := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		base := Slug(k)
		name := base
		for i := 2; taken[name]; i++ {
			name = base + "-" + strconv.Itoa(i)
		}
		taken[name] = true
		files[k] = name + ".html"
	}
	return files
}

// fragmentURL is the link a page uses for a fragment file.
func fragmentURL(file string) string {
	return FragmentDir + "/" + url.PathEscape(file)
}

// WriteResult reports what WriteTo produced.
type WriteResult struct {
	Dir      string   `json:"dir"`
	Files    []string `json:"files"`
	Entries  int      `json:"entries"`
	Members  int      `json:"members"`
	Keywords []string `json:"keywords"`
	Assets   []string `json:"assets,omitempty"`
}

// WriteTo writes index.html and the fragments into dir, creating it.
func (p *Page) WriteTo(dir string) (*WriteResult, error) {
	for _, sub := range []string{FragmentDir, path.Dir(ScriptPath)} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	res := &WriteResult{Dir: dir, Keywords: p.Keywords}
	if p.Content != nil {
		res.Entries = len(p.Content.Entries)
		res.Members = len(p.Content.Members)
	}

	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte(p.Doc.String()), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", IndexFile, err)
	}
	res.Files = append(res.Files, IndexFile)

	if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(ScriptPath)), Script(), 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ScriptPath, err)
	}
	res.Files = append(res.Files, ScriptPath)

	for _, k := range p.Keywords {
		rel := p.FragmentPath(k)
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), []byte(p.Fragments[k]), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", rel, err)
		}
		res.Files = append(res.Files, rel)
	}
	return res, nil
}

// CopyAssets copies AssetDirs that exist under root into dir and returns the
// ones copied.
func CopyAssets(root, dir string) ([]string, error) {
	var copied []string
	for _, name := range AssetDirs {
		src := filepath.Join(root, name)
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := copyTree(src, filepath.Join(dir, name)); err != nil {
			return copied, fmt.Errorf("copying %s: %w", name, err)
		}
		copied = append(copied, name)
	}
	return copied, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
