package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in labpage.yml.

Usage:
  labpage config                          # Show all config
  labpage config hostname                 # Get specific value
  labpage config hostname lab.example.edu # Set value
  labpage config keywords phylo,immunology

Keys:
  hostname        Host the page is served from; empty uses remote-bib-url
  remote-bib-url  Bibliography URL used when hostname is empty
  bib-path        Local bibliography path
  team-path       Team roster path
  about-path      About page markdown path
  highlight-name  Author name underlined in author lines
  keywords        Filter buttons, comma separated
  title           Page title
  output-dir      Build output directory
  cache-path      Fetch cache database
  rate-limit      Remote requests per second
  serve-addr      Preview server address

Values shown include .env and LABPAGE_* overrides; values saved do not.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configField binds a key to a labpage.yml field.
type configField struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

func stringField(ptr func(*config.Config) *string) configField {
	return configField{
		get: func(c *config.Config) string { return *ptr(c) },
		set: func(c *config.Config, v string) error { *ptr(c) = v; return nil },
	}
}

func pathField(ptr func(*config.Config) *string) configField {
	f := stringField(ptr)
	f.set = func(c *config.Config, v string) error { *ptr(c) = config.ExpandPath(v); return nil }
	return f
}

var configFields = map[string]configField{
	"hostname":       stringField(func(c *config.Config) *string { return &c.Hostname }),
	"remote-bib-url": stringField(func(c *config.Config) *string { return &c.RemoteBibURL }),
	"bib-path":       pathField(func(c *config.Config) *string { return &c.BibPath }),
	"team-path":      pathField(func(c *config.Config) *string { return &c.TeamPath }),
	"about-path":     pathField(func(c *config.Config) *string { return &c.AboutPath }),
	"highlight-name": stringField(func(c *config.Config) *string { return &c.HighlightName }),
	"title":          stringField(func(c *config.Config) *string { return &c.Title }),
	"output-dir":     pathField(func(c *config.Config) *string { return &c.OutputDir }),
	"cache-path":     pathField(func(c *config.Config) *string { return &c.CachePath }),
	"serve-addr":     stringField(func(c *config.Config) *string { return &c.ServeAddr }),
	"keywords": {
		get: func(c *config.Config) string { return strings.Join(c.Keywords, ",") },
		set: func(c *config.Config, v string) error {
			c.Keywords = nil
			for _, k := range strings.Split(v, ",") {
				if k = strings.TrimSpace(k); k != "" {
					c.Keywords = append(c.Keywords, k)
				}
			}
			return nil
		},
	},
	"rate-limit": {
		get: func(c *config.Config) string { return strconv.FormatFloat(c.RateLimit, 'g', -1, 64) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid rate-limit %q: %w", v, err)
			}
			c.RateLimit = f
			return nil
		},
	},
}

// normalizeKey converts underscores to hyphens for consistent key handling.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindSite()

	if len(args) == 0 {
		cfg := mustLoadConfig(root)
		if humanOutput {
			for _, key := range sortedKeys() {
				fmt.Printf("%-15s %s\n", key+":", configFields[key].get(cfg))
			}
			return nil
		}
		return outputJSON(cfg)
	}

	key := normalizeKey(args[0])
	field, ok := configFields[key]
	if !ok {
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if len(args) == 1 {
		cfg := mustLoadConfig(root)
		if humanOutput {
			fmt.Println(field.get(cfg))
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): field.get(cfg)})
		}
		return nil
	}

	// Set against the file alone so overrides are not persisted.
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := field.set(cfg, args[1]); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, field.get(cfg))
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: field.get(cfg)})
	}
	return nil
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func sortedKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
