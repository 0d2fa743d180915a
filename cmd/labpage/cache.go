package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/cache"
	"github.com/matsen/labpage/internal/config"
)

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the fetch cache used by --offline",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached sources",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

// CacheEntry is one cached source in list output.
type CacheEntry struct {
	Source    string    `json:"source"`
	Size      int       `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

func runCacheList(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	cfg := mustLoadConfig(root)

	db, err := cache.Open(config.Resolve(root, cfg.CachePath))
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	defer db.Close()

	items, err := db.List(context.Background())
	if err != nil {
		exitWithError(ExitError, "listing cache: %v", err)
	}

	if humanOutput {
		if len(items) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%-10s %-16s %s\n", humanize.Bytes(uint64(it.Size)), humanize.Time(it.FetchedAt), it.Source)
		}
		return nil
	}

	out := make([]CacheEntry, 0, len(items))
	for _, it := range items {
		out = append(out, CacheEntry{Source: it.Source, Size: it.Size, FetchedAt: it.FetchedAt})
	}
	return outputJSON(out)
}
