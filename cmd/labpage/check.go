package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/check"
	"github.com/matsen/labpage/internal/publications"
	"github.com/matsen/labpage/internal/team"
)

var (
	checkNoPDFs  bool
	checkOffline bool
	checkStrict  bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkNoPDFs, "no-pdfs", false, "Skip opening local PDF links")
	checkCmd.Flags().BoolVar(&checkOffline, "offline", false, "Use cached sources only")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero on warnings too")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Lint the bibliography and roster",
	Long: `Lint the bibliography and roster for problems that render silently:
missing fields, entries that are never listed, keywords without a filter
button, author names the formatter splits apart, roster members outside
any group, and local PDF links that do not open.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Members int    `json:"members"`
	*check.Report
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindSite()
	cfg := mustLoadConfig(root)
	fetcher, db := mustOpenFetcher(root, cfg, checkOffline)
	defer db.Close()
	ctx := context.Background()

	source := cfg.BibSource()
	entries, err := publications.LoadBibliography(ctx, fetcher, source)
	if err != nil && !errors.Is(err, bibtex.ErrUnterminated) {
		exitWithError(ExitDataError, "%v", err)
	}

	report := &check.Report{}
	if err != nil {
		report.Issues = append(report.Issues, check.Issue{
			Source: source, Severity: check.SeverityError, Message: err.Error(),
		})
		report.Errors++
	}
	check.Bibliography(report, entries, check.Options{
		Root:      root,
		Source:    source,
		Keywords:  cfg.Keywords,
		CheckPDFs: !checkNoPDFs,
	})

	members, err := team.Load(ctx, fetcher, cfg.TeamPath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	check.Roster(report, members, root, cfg.TeamPath)

	status := "ok"
	failed := !report.OK() || (checkStrict && report.Warnings > 0)
	if failed {
		status = "failed"
	}

	if humanOutput {
		for _, i := range report.Issues {
			fmt.Println(i)
		}
		fmt.Printf("%d entries, %d members: %d errors, %d warnings\n",
			len(entries), len(members), report.Errors, report.Warnings)
	} else {
		outputJSON(CheckResult{Status: status, Entries: len(entries), Members: len(members), Report: report})
	}

	if failed {
		os.Exit(ExitDataError)
	}
	return nil
}
