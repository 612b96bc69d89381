// Package main is the entry point for the armakit CLI.
package main

import (
	"errors"
	"os"

	"github.com/armakit/armakit/internal/cli"
	"github.com/armakit/armakit/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Build and execute the root command.
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, cli.ErrIssuesFound):
			// Signal errors only through the exit code.
			return cli.ExitErrors
		case errors.Is(err, cli.ErrWarningsFound):
			return cli.ExitWarnings
		}

		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		return 1
	}

	return 0
}
