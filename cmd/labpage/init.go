package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/labpage/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create labpage.yml with default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		exitWithError(ExitError, "resolving directory: %v", err)
	}

	if config.IsSite(dir) {
		exitWithError(ExitConfigError, "%s already exists", config.ConfigPath(dir))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		exitWithError(ExitError, "creating directory: %v", err)
	}
	if err := config.Default().Save(dir); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Created %s\n", config.ConfigPath(dir))
	} else {
		outputJSON(StatusResponse{Status: "created", Path: config.ConfigPath(dir)})
	}
	return nil
}
