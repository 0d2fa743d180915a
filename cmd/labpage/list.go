package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/author"
	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/reference"
)

var (
	listKeyword string
	listAuthor  string
	listBibTeX  bool
	listOffline bool
)

func init() {
	listCmd.Flags().StringVarP(&listKeyword, "keyword", "k", publications.All, "Filter keyword")
	listCmd.Flags().StringVarP(&listAuthor, "author", "a", "", `Author filter ("Yu", "Timothy Yu", "Yu, T")`)
	listCmd.Flags().BoolVar(&listBibTeX, "bibtex", false, "Print matching entries as BibTeX")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Use cached sources only")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the publications shown under a filter",
	Long: `List the publications the page shows under a filter keyword, in file
order. Entries without an abstract are never shown and are not listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// ListEntry is one publication in list output.
type ListEntry struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Authors  []reference.Author `json:"authors"`
	Venue    string             `json:"venue"`
	Keywords []string           `json:"keywords,omitempty"`
	URL      string             `json:"url,omitempty"`
	Selected bool               `json:"selected"`
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	cfg := mustLoadConfig(root)
	fetcher, db := mustOpenFetcher(root, cfg, listOffline)
	defer db.Close()

	entries, err := publications.LoadBibliography(context.Background(), fetcher, cfg.BibSource())
	if err != nil && !errors.Is(err, bibtex.ErrUnterminated) {
		exitWithError(ExitDataError, "%v", err)
	}

	matches := publications.Filter(entries, listKeyword)
	if q := author.ParseQuery(listAuthor); !q.IsEmpty() {
		var kept []bibtex.Entry
		for _, e := range matches {
			if q.MatchesEntry(e) {
				kept = append(kept, e)
			}
		}
		matches = kept
	}

	if listBibTeX {
		fmt.Print(bibtex.FormatList(matches))
		return nil
	}

	if humanOutput {
		if len(matches) == 0 {
			fmt.Println("No publications match.")
			return nil
		}
		for _, e := range matches {
			title := truncateString(stripTags(e.Get(bibtex.FieldTitle)), ListTitleMaxLen)
			outputHuman("%-20s %s\n", e.ID(), title)
			outputHuman("%-20s %s\n", "", publications.Venue(e))
		}
		return nil
	}

	out := make([]ListEntry, 0, len(matches))
	for _, e := range matches {
		out = append(out, ListEntry{
			ID:       e.ID(),
			Title:    stripTags(e.Get(bibtex.FieldTitle)),
			Authors:  reference.ParseAuthors(e.Get(bibtex.FieldAuthor)),
			Venue:    publications.Venue(e),
			Keywords: e.Keywords(),
			URL:      e.Get(bibtex.FieldURL),
			Selected: e.Has(bibtex.FieldSelected),
		})
	}
	return outputJSON(out)
}
