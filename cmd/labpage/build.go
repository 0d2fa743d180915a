package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/config"
	"github.com/matsen/labpage/internal/site"
)

var (
	buildOffline bool
	buildOut     string
)

func init() {
	buildCmd.Flags().BoolVar(&buildOffline, "offline", false, "Use cached sources only")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default: output_dir from labpage.yml)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the homepage into the output directory",
	Long: `Render the homepage into the output directory.

Writes index.html, one publications fragment per filter keyword under
pubs/, and copies the img and css directories. Sources that cannot be
fetched leave their section empty and are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	cfg := mustLoadConfig(root)
	logger := newLogger()
	defer logger.Sync()

	fetcher, db := mustOpenFetcher(root, cfg, buildOffline)
	defer db.Close()

	out := buildOut
	if out == "" {
		out = config.Resolve(root, cfg.OutputDir)
	}

	page, err := site.NewBuilder(fetcher, site.OptionsFromConfig(cfg), logger).Build(context.Background())
	if err != nil {
		exitWithError(ExitDataError, "building site: %v", err)
	}
	res, err := page.WriteTo(out)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	assets, err := site.CopyAssets(root, out)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	res.Assets = assets

	if humanOutput {
		fmt.Printf("Built %s: %d entries, %d members, %d filters\n", res.Dir, res.Entries, res.Members, len(res.Keywords))
		for _, f := range res.Files {
			fmt.Printf("  %s\n", f)
		}
		return nil
	}
	return outputJSON(res)
}
