// Package config handles site configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matsen/labpage/internal/fetch"
	"github.com/matsen/labpage/internal/publications"
)

// Config represents site configuration stored in labpage.yml.
type Config struct {
	// Hostname stands in for the page's location.hostname: empty means the
	// page is opened from disk and the remote bibliography is used.
	Hostname      string   `yaml:"hostname,omitempty"`
	RemoteBibURL  string   `yaml:"remote_bib_url,omitempty"`
	BibPath       string   `yaml:"bib_path,omitempty"`
	TeamPath      string   `yaml:"team_path,omitempty"`
	AboutPath     string   `yaml:"about_path,omitempty"`  // optional markdown intro
	HighlightName string   `yaml:"highlight_name,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty"` // filter buttons, in order
	OutputDir     string   `yaml:"output_dir,omitempty"`
	CachePath     string   `yaml:"cache_path,omitempty"`
	RateLimit     float64  `yaml:"rate_limit,omitempty"` // remote requests per second
	ServeAddr     string   `yaml:"serve_addr,omitempty"`
	Title         string   `yaml:"title,omitempty"`
}

const (
	// ConfigFile marks a site root.
	ConfigFile = "labpage.yml"

	DefaultRemoteBibURL = "https://res.cloudinary.com/dnijsrvoc/raw/upload/v1664823559/publications_vhght0.bib"
	DefaultBibPath      = "publications.bib"
	DefaultTeamPath     = "data.json"
	DefaultAboutPath    = "about.md"
	DefaultOutputDir    = "public"
	DefaultCachePath    = ".labpage/cache.db"
	DefaultServeAddr    = "127.0.0.1:8080"
	DefaultTitle        = "Homepage"
)

// ErrNoSite is returned when no labpage.yml is found above a directory.
var ErrNoSite = errors.New("not in a labpage site (no labpage.yml found)")

// Default returns the configuration used when labpage.yml sets nothing.
func Default() *Config {
	return &Config{
		RemoteBibURL: DefaultRemoteBibURL,
		BibPath:      DefaultBibPath,
		TeamPath:     DefaultTeamPath,
		AboutPath:    DefaultAboutPath,
		OutputDir:    DefaultOutputDir,
		CachePath:    DefaultCachePath,
		RateLimit:    fetch.DefaultRateLimit,
		ServeAddr:    DefaultServeAddr,
		Title:        DefaultTitle,
	}
}

// ConfigPath returns the path to labpage.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsSite checks if the given path contains a labpage.yml.
func IsSite(root string) bool {
	info, err := os.Stat(ConfigPath(root))
	return err == nil && !info.IsDir()
}

// FindSiteRoot walks up from start to the nearest directory with labpage.yml.
func FindSiteRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsSite(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoSite
		}
		abs = parent
	}
}

// Load reads labpage.yml from root. A missing file yields Default(); fields
// the file leaves unset keep their defaults.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit %v: must be >= 0", c.RateLimit)
	}
	if c.RemoteBibURL != "" && !fetch.IsRemote(c.RemoteBibURL) {
		return fmt.Errorf("invalid remote_bib_url %q: must be an http(s) URL", c.RemoteBibURL)
	}
	seen := make(map[string]bool)
	for _, k := range c.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("invalid keywords: empty entry")
		}
		if seen[k] {
			return fmt.Errorf("invalid keywords: %q listed twice", k)
		}
		seen[k] = true
	}
	return nil
}

// FilterKeywords returns the filter buttons in order, "all" first.
func (c *Config) FilterKeywords() []string {
	out := []string{"all"}
	for _, k := range c.Keywords {
		if k != "all" {
			out = append(out, k)
		}
	}
	return out
}

// BibSource returns where the bibliography is read from: the remote URL
// when no hostname is set, the local bib_path otherwise.
func (c *Config) BibSource() string {
	return publications.ResolveSource(c.Hostname, c.RemoteBibURL, c.BibPath)
}

// Resolve returns path relative to root unless it is absolute.
func Resolve(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
