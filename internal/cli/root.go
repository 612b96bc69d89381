// Package cli provides the Cobra command structure for armakit.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/armakit/armakit/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root armakit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "armakit",
		Short: "A fast preprocessor for layered game-mod workspaces",
		Long: `armakit preprocesses game configuration sources the way the engine does:
object-like and function-like macros, includes resolved across a layered
case-insensitive workspace, and conditional compilation.

Workspaces compose multiple roots (project sources, dependency mods, an
optional game install) into one virtual namespace, so includes resolve
exactly as they would in the packed game.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			// Subcommands pick the logger up through cmd.Context().
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newPreprocessCommand())
	rootCmd.AddCommand(newLayersCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
