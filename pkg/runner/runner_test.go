package runner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/runner"
	"github.com/armakit/armakit/pkg/workspace"
)

// newWorkspace builds a single-layer in-memory workspace from a virtual
// path to content mapping.
func newWorkspace(t *testing.T, files map[string]string) *workspace.Workspace {
	t.Helper()

	base := "mem://localhost/armakit/runner/" + strings.ReplaceAll(t.Name(), "/", "_")
	fs := afs.New()
	for p, content := range files {
		rel := strings.ReplaceAll(p, `\`, "/")
		err := fs.Upload(context.Background(), base+"/"+rel, 0o644, strings.NewReader(content))
		require.NoError(t, err)
	}

	ws, err := workspace.New(workspace.Config{
		Layers: []workspace.LayerConfig{{Name: "src", Path: base, Rank: 0}},
	})
	require.NoError(t, err)
	return ws
}

func TestRunProcessesAllEntries(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"addons/one/config.cpp": "#define A 1\nvalue = A;\n",
		"addons/two/config.cpp": "value = 2;\n",
		"addons/two/ui.hpp":     "not an entry\n",
	})

	result, err := runner.New(ws).Run(context.Background(), runner.Options{
		Config: config.NewConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.EntriesDiscovered)
	assert.Equal(t, 2, result.Stats.EntriesProcessed)
	assert.Equal(t, 0, result.Stats.DiagnosticsTotal)
	require.Len(t, result.Entries, 2)
	for _, outcome := range result.Entries {
		require.NoError(t, outcome.Error)
		require.NotNil(t, outcome.Result)
	}
}

func TestRunDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"c.cpp": "3;\n",
		"a.cpp": "1;\n",
		"b.cpp": "2;\n",
	}
	ws := newWorkspace(t, files)

	for range 3 {
		result, err := runner.New(ws).Run(context.Background(), runner.Options{Jobs: 3})
		require.NoError(t, err)
		require.Len(t, result.Entries, 3)
		assert.Equal(t, "a.cpp", result.Entries[0].Path)
		assert.Equal(t, "b.cpp", result.Entries[1].Path)
		assert.Equal(t, "c.cpp", result.Entries[2].Path)
	}
}

func TestRunAggregatesDiagnostics(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"bad.cpp":  `#include "missing.hpp"` + "\n",
		"good.cpp": "value = 1;\n",
	})

	result, err := runner.New(ws).Run(context.Background(), runner.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.EntriesWithIssues)
	assert.Equal(t, 1, result.Stats.DiagnosticsTotal)
	assert.Equal(t, 1, result.Stats.DiagnosticsBySeverity["error"])
	assert.True(t, result.HasFailures())
	assert.True(t, result.HasIssues())
}

func TestRunAppliesConfigDefines(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"config.cpp": "#ifdef RELEASE\nrelease\n#else\ndebug\n#endif\n",
	})

	cfg := config.NewConfig()
	cfg.Defines["RELEASE"] = "1"

	result, err := runner.New(ws).Run(context.Background(), runner.Options{Config: cfg})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	sig := result.Entries[0].Result.Significant()
	require.NotEmpty(t, sig)
	assert.Equal(t, "release", sig[0].Text())
}

func TestRunExplicitEntries(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"a.cpp": "1;\n",
		"b.cpp": "2;\n",
	})

	result, err := runner.New(ws).Run(context.Background(), runner.Options{
		Entries: []string{"b.cpp"},
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "b.cpp", result.Entries[0].Path)
}

func TestRunMissingExplicitEntry(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.cpp": "1;\n"})

	_, err := runner.New(ws).Run(context.Background(), runner.Options{
		Entries: []string{"missing.cpp"},
	})
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"a.cpp": "1;\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.New(ws).Run(ctx, runner.Options{})
	require.Error(t, err)
}
