// Package main provides the labpage CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/labpage/internal/cache"
	"github.com/matsen/labpage/internal/config"
	"github.com/matsen/labpage/internal/fetch"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	rootFlag    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra's own errors are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "labpage",
	Short: "Build and preview a lab homepage",
	Long: `labpage renders a static academic homepage from a BibTeX bibliography,
a JSON team roster and an optional markdown introduction.

The site root is the nearest directory containing labpage.yml.
All commands output JSON by default; pass --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Site root (default: search upward from the current directory)")
	rootCmd.Version = Version
}

// mustFindSite finds the site root, exits on error.
func mustFindSite() string {
	start := rootFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(ExitError, "getting current directory: %v", err)
		}
		start = cwd
	}

	root, err := config.FindSiteRoot(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'labpage init' to create one.", err)
	}
	return root
}

// loadConfig loads labpage.yml with .env and environment overrides applied.
func loadConfig(root string) (*config.Config, error) {
	if err := config.LoadDotEnv(root); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mustLoadConfig loads the site config, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := loadConfig(root)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// newLogger returns a development logger under --verbose and a production
// logger that only reports warnings otherwise.
func newLogger() *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	zcfg.Encoding = "console"
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// mustOpenFetcher returns the fetcher for the site: a rate-limited client
// rooted at the site, recorded into the fetch cache. With offline set only
// cached sources are served. The caller closes the returned cache.
func mustOpenFetcher(root string, cfg *config.Config, offline bool) (fetch.Fetcher, *cache.DB) {
	client := fetch.NewClient(
		fetch.WithRoot(root),
		fetch.WithRateLimit(cfg.RateLimit),
		fetch.WithUserAgent("labpage/"+Version),
	)
	db, err := cache.Open(config.Resolve(root, cfg.CachePath))
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	return cache.NewFetcher(client, db, offline), db
}
