package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/internal/cli"
)

// testConfigWithRedefinition redefines FOO without an #undef, which
// produces a macro-redefined warning.
const testConfigWithRedefinition = "#define FOO 1\n#define FOO 2\nvalue = FOO;\n"

func testBuildInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

// writeProjectLayer creates a layer directory containing config.cpp.
func writeProjectLayer(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.cpp"), []byte(content), 0644))
	return dir
}

// emptyConfigFile writes a config that keeps discovery away from any real
// project config.
func emptyConfigFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".armakit.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 0\n"), 0644))
	return path
}

func TestIntegration_PreprocessReportsRedefinition(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, testConfigWithRedefinition)

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"--no-context",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.NoError(t, err, "warnings alone must not fail the command")

	output := stdout.String() + stderr.String()
	assert.Contains(t, output, "macro-redefined")
	assert.Contains(t, output, "config.cpp")
}

func TestIntegration_StrictPromotesWarnings(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, testConfigWithRedefinition)

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"--strict",
		"--no-context",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.ErrorIs(t, err, cli.ErrWarningsFound)
}

func TestIntegration_MissingIncludeFails(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, "#include \"missing.hpp\"\n")

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"--no-context",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	output := stdout.String() + stderr.String()
	assert.Contains(t, output, "file-not-found")
}

func TestIntegration_LayeredIncludeResolution(t *testing.T) {
	t.Parallel()

	// The higher-priority layer overrides macros.hpp from the base layer.
	baseDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "macros.hpp"),
		[]byte("#define VALUE base\n"), 0644))

	topDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(topDir, "macros.hpp"),
		[]byte("#define VALUE top\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(topDir, "config.cpp"),
		[]byte("#include \"macros.hpp\"\nresult = VALUE;\n"), 0644))

	outDir := t.TempDir()

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "mods=" + topDir,
		"--layer", "base=" + baseDir,
		"--output", outDir,
		"--no-context",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.NoError(t, err)

	rendered, err := os.ReadFile(filepath.Join(outDir, "config.cpp"))
	require.NoError(t, err)

	assert.Contains(t, string(rendered), "top", "higher-priority layer must win")
	assert.NotContains(t, string(rendered), "base")
}

func TestIntegration_DefineFlagSeedsMacro(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, "#ifdef DEBUG\nmode = debug;\n#endif\n")
	outDir := t.TempDir()

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"-D", "DEBUG=1",
		"--output", outDir,
		"--no-context",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.NoError(t, err)

	rendered, err := os.ReadFile(filepath.Join(outDir, "config.cpp"))
	require.NoError(t, err)

	assert.Contains(t, string(rendered), "debug")
}

func TestIntegration_JSONFormat(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, testConfigWithRedefinition)

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"--format", "json",
		"--color", "never",
		"config.cpp",
	})

	err := cmd.Execute()
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &payload),
		"json output must be valid JSON, got: %s", stdout.String())
	assert.Contains(t, stdout.String(), "macro-redefined")
}

func TestIntegration_UnknownFormatRejected(t *testing.T) {
	t.Parallel()

	layerDir := writeProjectLayer(t, "value = 1;\n")

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"preprocess",
		"--config", emptyConfigFile(t),
		"--layer", "project=" + layerDir,
		"--format", "xml",
		"config.cpp",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestIntegration_InitCreatesConfig(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), ".armakit.yml")

	cmd := cli.NewRootCommand(testBuildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"init", "--output", outPath})

	err := cmd.Execute()
	require.NoError(t, err)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "layers:")

	// A second init without --force must refuse to overwrite.
	cmd = cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"init", "--output", outPath})
	err = cmd.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already exists"))
}

func TestIntegration_LayersCommandJSON(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configContent := `
layers:
  - name: project
    path: ./addons
    rank: 0
  - name: deps
    path: ./deps
    rank: 1
`
	configPath := filepath.Join(tmpDir, ".armakit.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cmd := cli.NewRootCommand(testBuildInfo())
	cmd.SetArgs([]string{"layers", "--config", configPath, "--format", "json"})

	// The layers command writes JSON to os.Stdout directly; just verify it
	// loads the config and exits cleanly.
	err := cmd.Execute()
	require.NoError(t, err)
}
