package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/armakit/armakit/internal/configloader"
	"github.com/armakit/armakit/internal/logging"
	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/fsutil"
	"github.com/armakit/armakit/pkg/reporter"
	"github.com/armakit/armakit/pkg/runner"
	"github.com/armakit/armakit/pkg/workspace"
)

// ErrIssuesFound is returned when preprocessing produces error diagnostics.
var ErrIssuesFound = errors.New("preprocessing issues found")

// ErrWarningsFound is returned when strict mode promotes warnings to a
// failing exit code.
var ErrWarningsFound = errors.New("preprocessing warnings found")

// outputFilePermissions is the file mode for rendered output files.
const outputFilePermissions = 0644

type preprocessFlags struct {
	format            string
	pathFormat        string
	ignore            []string
	defines           []string
	layers            []string
	systemMount       string
	enableSystemMount bool
	strict            bool
	noContext         bool
	compact           bool
	perEntry          bool
	output            string
}

func newPreprocessCommand() *cobra.Command {
	var cfg config.Config
	flags := &preprocessFlags{}

	cmd := &cobra.Command{
		Use:     "preprocess [entries...]",
		Aliases: []string{"pp"},
		Short:   "Preprocess entry files through the layered workspace",
		Long:    preprocessLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(cmd, args, &cfg, flags)
		},
	}

	addPreprocessFlags(cmd, &cfg, flags)

	return cmd
}

const preprocessLongDescription = `Preprocess entry files for macro and include diagnostics.

Entries are virtual workspace paths or glob patterns. Without arguments,
every preprocessable file in the highest-priority layer is selected.

Examples:
  armakit preprocess                          # Preprocess the whole top layer
  armakit preprocess addons/main/config.cpp   # Single entry
  armakit preprocess 'addons/*/config.cpp'    # Glob pattern
  armakit preprocess -D DEBUG=1               # Seed a macro definition
  armakit preprocess --format json            # Output as JSON for CI
  armakit preprocess --strict                 # Treat warnings as errors
  armakit preprocess -o build/pp              # Write rendered output files`

func runPreprocess(cmd *cobra.Command, args []string, cfg *config.Config, flags *preprocessFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	// Map string flags to typed config values.
	cfg.Format = config.OutputFormat(flags.format)
	cfg.PathFormat = config.PathFormat(flags.pathFormat)
	cfg.Ignore = flags.ignore
	cfg.Output = flags.output
	cfg.Strict = flags.strict
	cfg.SystemMount = flags.systemMount
	cfg.EnableSystemMount = flags.enableSystemMount

	defines, err := parseDefineFlags(flags.defines)
	if err != nil {
		return err
	}
	cfg.Defines = defines

	layers, err := parseLayerFlags(flags.layers)
	if err != nil {
		return err
	}
	cfg.Layers = layers

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	// Get working directory for config discovery.
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	}

	loadResult, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	// Log warnings from config loading.
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	// Log loaded configuration files.
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	logger.Debug("configuration loaded",
		logging.FieldLayers, len(finalCfg.Layers),
		logging.FieldJobs, finalCfg.Jobs,
		logging.FieldDefines, len(finalCfg.Defines),
	)

	// Assemble the workspace.
	ws, err := buildWorkspace(finalCfg)
	if err != nil {
		return errors.Join(errors.New("failed to assemble workspace"), err)
	}

	ppRunner := runner.New(ws)

	// CLI entry arguments take precedence over configured entries.
	entries := args
	if len(entries) == 0 {
		entries = finalCfg.Entries
	}

	runOpts := runner.Options{
		Entries:      entries,
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: finalCfg.Ignore,
		Jobs:         finalCfg.Jobs,
		Config:       finalCfg,
	}

	logger.Debug("starting preprocessing run",
		logging.FieldEntries, runOpts.Entries,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := ppRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("preprocessing run failed"), err)
	}

	// Write rendered outputs before reporting so IO failures surface first.
	if finalCfg.Output != "" {
		if err := writeRenderedOutputs(ctx, result, finalCfg.Output); err != nil {
			return fmt.Errorf("write outputs: %w", err)
		}
	}

	// Get color mode from persistent flag.
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto" // Default to auto if flag retrieval fails
	}

	// Parse output format.
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:       cmd.OutOrStdout(),
		ErrorWriter:  cmd.ErrOrStderr(),
		Format:       format,
		Color:        colorMode,
		ShowContext:  !flags.noContext,
		ShowSummary:  true,
		GroupByEntry: true,
		Compact:      flags.compact,
		PerEntry:     flags.perEntry,
		PathFormat:   finalCfg.PathFormat,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", "error", err)
		return fmt.Errorf("report results: %w", err)
	}

	// Determine exit code based on result.
	switch ExitCodeFromResult(result, finalCfg.Strict) {
	case ExitErrors:
		return ErrIssuesFound
	case ExitWarnings:
		return ErrWarningsFound
	}

	return nil
}

func addPreprocessFlags(cmd *cobra.Command, cfg *config.Config, flags *preprocessFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, sarif, summary")
	cmd.Flags().StringVar(&flags.pathFormat, "path-format", "virtual", "path format in output: virtual, layered")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&cfg.MaxDepth, "max-depth", 0, "maximum nested macro expansion depth (0 = default)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringArrayVarP(&flags.defines, "define", "D", nil, "macro definition NAME or NAME=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&flags.layers, "layer", nil, "workspace layer NAME=PATH, highest priority first (repeatable)")
	cmd.Flags().StringVar(&flags.systemMount, "system-mount", "", "lowest-priority root (game install directory)")
	cmd.Flags().BoolVar(&flags.enableSystemMount, "enable-system-mount", false, "enable the system mount")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.perEntry, "per-entry", false, "output separate report for each entry (table format)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "directory to write rendered entry files to")
}

// parseDefineFlags parses repeated -D flags into a macro define map.
// A bare NAME defines the macro with an empty body.
func parseDefineFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	defines := make(map[string]string, len(values))
	for _, v := range values {
		name, body, _ := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid define %q: macro name must not be empty", v)
		}
		defines[name] = body
	}
	return defines, nil
}

// parseLayerFlags parses repeated --layer NAME=PATH flags. Ranks follow
// flag order, so the first --layer is the highest-priority layer.
func parseLayerFlags(values []string) ([]config.LayerConfig, error) {
	if len(values) == 0 {
		return nil, nil
	}

	layers := make([]config.LayerConfig, 0, len(values))
	for i, v := range values {
		name, path, ok := strings.Cut(v, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid layer %q: expected NAME=PATH", v)
		}
		layers = append(layers, config.LayerConfig{Name: name, Path: path, Rank: i})
	}
	return layers, nil
}

// buildWorkspace assembles the layered workspace from the resolved
// configuration. Without configured layers, the working directory becomes
// a single "project" layer.
func buildWorkspace(cfg *config.Config) (*workspace.Workspace, error) {
	layerCfgs := cfg.Layers
	if len(layerCfgs) == 0 {
		layerCfgs = []config.LayerConfig{{Name: "project", Path: ".", Rank: 0}}
	}

	wsLayers := make([]workspace.LayerConfig, 0, len(layerCfgs))
	for _, lc := range layerCfgs {
		wsLayers = append(wsLayers, workspace.LayerConfig{
			Name: lc.Name,
			Path: lc.Path,
			Rank: lc.Rank,
		})
	}

	return workspace.New(workspace.Config{
		Layers:            wsLayers,
		SystemMount:       cfg.SystemMount,
		EnableSystemMount: cfg.EnableSystemMount,
	})
}

// writeRenderedOutputs writes the rendered token stream of each successful
// entry under outDir, mirroring the virtual path layout.
func writeRenderedOutputs(ctx context.Context, result *runner.Result, outDir string) error {
	for _, outcome := range result.Entries {
		if outcome.Error != nil || outcome.Result == nil || outcome.Result.HasErrors() {
			continue
		}

		rel := virtualToOSPath(outcome.Path)
		target := filepath.Join(outDir, rel)

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		content := []byte(outcome.Result.Render())
		if _, err := fsutil.WriteAtomicIfChanged(ctx, target, content, outputFilePermissions); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	return nil
}

// virtualToOSPath converts a backslash virtual path to a relative OS path.
func virtualToOSPath(vp string) string {
	trimmed := strings.TrimLeft(vp, `\`)
	return filepath.FromSlash(strings.ReplaceAll(trimmed, `\`, "/"))
}
