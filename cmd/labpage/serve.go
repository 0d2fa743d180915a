package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matsen/labpage/internal/config"
	"github.com/matsen/labpage/internal/fetch"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/server"
	"github.com/matsen/labpage/internal/site"
	"github.com/matsen/labpage/internal/watch"
)

var (
	serveAddr     string
	serveWatch    bool
	serveOffline  bool
	serveAllowAll bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: serve_addr from labpage.yml)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Rebuild when a source file changes")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Use cached sources only")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow cross-origin requests from any origin")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the homepage over HTTP",
	Long: `Preview the homepage over HTTP.

GET / returns the page in its current state. Filter buttons, abstract
toggles and the about switch are driven with:

  POST /pubs/{keyword}
  POST /abstract/{id}
  POST /about?checked=true|false

Each returns the transitions to play. With --watch the page is rebuilt
when the bibliography, roster, about text or labpage.yml changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	cfg := mustLoadConfig(root)
	logger := newLogger()
	defer logger.Sync()

	fetcher, db := mustOpenFetcher(root, cfg, serveOffline)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := site.NewBuilder(fetcher, previewOptions(cfg), logger)
	page, err := builder.Build(ctx)
	if err != nil {
		exitWithError(ExitDataError, "building site: %v", err)
	}

	ctrl := publications.NewController(page.Doc, builder.Loader(), builder.Renderer(), logger)
	addr := serveAddr
	if addr == "" {
		addr = cfg.ServeAddr
	}
	srv := server.New(server.Config{
		Addr:     addr,
		Root:     root,
		Assets:   site.AssetDirs,
		AllowAll: serveAllowAll,
	}, ctrl, logger)

	if serveWatch {
		w, err := watch.New(watchedFiles(root, cfg), rebuildFunc(root, fetcher, srv, logger), watch.WithLogger(logger))
		if err != nil {
			exitWithError(ExitError, "starting watcher: %v", err)
		}
		if err := w.Start(ctx); err != nil {
			exitWithError(ExitError, "starting watcher: %v", err)
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	if humanOutput {
		fmt.Printf("Serving %s at http://%s\n", root, addr)
		fmt.Println("Press Ctrl+C to stop.")
	} else {
		outputJSON(StatusResponse{Status: "serving", Path: "http://" + addr})
	}

	select {
	case err := <-errCh:
		if err != nil {
			exitWithError(ExitError, "serving: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutting down", zap.Error(err))
	}
	return nil
}

// previewOptions returns builder options for a page driven by the preview
// server.
func previewOptions(cfg *config.Config) site.Options {
	opts := site.OptionsFromConfig(cfg)
	opts.Mode = site.ModePreview
	return opts
}

// rebuildFunc reloads labpage.yml and rebuilds the page from it on every
// call, so edits to the config take effect as well as edits to the sources.
// The fetcher, and with it the rate limit, stays the one serve started with.
func rebuildFunc(root string, fetcher fetch.Fetcher, srv *server.Server, logger *zap.Logger) watch.RebuildFunc {
	return func(ctx context.Context) error {
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		builder := site.NewBuilder(fetcher, previewOptions(cfg), logger)
		page, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		srv.Replace(page.Doc, builder.Loader(), builder.Renderer())
		return nil
	}
}

// watchedFiles lists the local sources a rebuild depends on. A remote
// bibliography is not watched.
func watchedFiles(root string, cfg *config.Config) []string {
	files := []string{config.ConfigPath(root), config.Resolve(root, cfg.TeamPath)}
	if cfg.AboutPath != "" {
		files = append(files, config.Resolve(root, cfg.AboutPath))
	}
	if src := cfg.BibSource(); src == cfg.BibPath {
		files = append(files, config.Resolve(root, src))
	}
	return files
}
