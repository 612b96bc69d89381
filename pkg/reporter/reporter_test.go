package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/preproc"
	"github.com/armakit/armakit/pkg/reporter"
	"github.com/armakit/armakit/pkg/runner"
	"github.com/armakit/armakit/pkg/source"
)

func testFile(path, layer string) *source.File {
	content := "#define FOO 1\n#define FOO 2\nvalue = FOO;\n"
	return source.NewFile(path, layer, 1, []byte(content))
}

func testDiag(code diag.Code, sev diag.Severity, msg string, file *source.File, offset int) *diag.Diagnostic {
	return &diag.Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  msg,
		Loc:      source.Location{File: file, Offset: offset},
	}
}

// makeResult assembles a runner.Result with stats matching the outcomes.
func makeResult(outcomes ...runner.EntryOutcome) *runner.Result {
	result := &runner.Result{
		Stats: runner.Stats{DiagnosticsBySeverity: make(map[string]int)},
	}
	for _, outcome := range outcomes {
		result.Entries = append(result.Entries, outcome)
		result.Stats.EntriesDiscovered++
		if outcome.Error != nil {
			result.Stats.EntriesErrored++
			continue
		}
		if outcome.Result == nil {
			continue
		}
		result.Stats.EntriesProcessed++
		result.Stats.FilesRead += len(outcome.Result.Files)
		if len(outcome.Result.Diagnostics) > 0 {
			result.Stats.EntriesWithIssues++
		}
		for _, d := range outcome.Result.Diagnostics {
			result.Stats.DiagnosticsTotal++
			result.Stats.DiagnosticsBySeverity[string(d.Severity)]++
		}
	}
	return result
}

func warningResult() *runner.Result {
	file := testFile(`\addons\main\config.cpp`, "core")
	return makeResult(runner.EntryOutcome{
		Path: `\addons\main\config.cpp`,
		Result: &preproc.Result{
			Entry: file,
			Files: []*source.File{file},
			Diagnostics: []*diag.Diagnostic{
				testDiag(diag.CodeMacroRedefined, diag.SeverityWarning,
					"macro FOO redefined with a different body", file, 14),
			},
		},
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "table", want: reporter.FormatTable},
		{input: "json", want: reporter.FormatJSON},
		{input: "sarif", want: reporter.FormatSARIF},
		{input: "summary", want: reporter.FormatSummary},
		{input: "xml", wantErr: true},
	}

	for _, tc := range tests {
		t.Run("format "+tc.input, func(t *testing.T) {
			got, err := reporter.ParseFormat(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := reporter.New(reporter.Options{Format: reporter.Format("xml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestTextReporter_GroupedOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"
	opts.Format = reporter.FormatText

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	out := buf.String()
	assert.Contains(t, out, `\addons\main\config.cpp`)
	assert.Contains(t, out, "(1 issues)")
	assert.Contains(t, out, "macro FOO redefined with a different body")
	assert.Contains(t, out, "(macro-redefined)")
	assert.Contains(t, out, "1 issue (")
}

func TestTextReporter_EntryError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"

	rep := reporter.NewTextReporter(opts)

	result := makeResult(runner.EntryOutcome{
		Path:  `\missing.cpp`,
		Error: assert.AnError,
	})

	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `\missing.cpp`)
	assert.Contains(t, buf.String(), "error:")
}

func TestTextReporter_NoEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"

	rep := reporter.NewTextReporter(opts)

	count, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)

	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No entries to preprocess.")
}

func TestJSONReporter_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Format = reporter.FormatJSON

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Entries, 1)
	entry := output.Entries[0]
	assert.Equal(t, `\addons\main\config.cpp`, entry.Path)
	require.Len(t, entry.Diagnostics, 1)
	assert.Equal(t, "macro-redefined", entry.Diagnostics[0].Code)
	assert.Equal(t, "warning", entry.Diagnostics[0].Severity)
	assert.Equal(t, 2, entry.Diagnostics[0].Line)
	assert.Equal(t, 1, output.Summary.TotalIssues)
	assert.Equal(t, 1, output.Summary.BySeverity["warning"])
	assert.Equal(t, 1, output.Summary.FilesRead)
}

func TestJSONReporter_LayeredPaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.PathFormat = config.PathFormatLayered

	rep := reporter.NewJSONReporter(opts)

	_, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Entries, 1)
	require.Len(t, output.Entries[0].Diagnostics, 1)
	assert.Equal(t, `core:\addons\main\config.cpp`, output.Entries[0].Diagnostics[0].File)
}

func TestSARIFReporter_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf

	rep := reporter.NewSARIFReporter(opts)

	count, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var output reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "2.1.0", output.Version)
	require.Len(t, output.Runs, 1)
	run := output.Runs[0]
	assert.Equal(t, "armakit", run.Tool.Driver.Name)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "macro-redefined", run.Results[0].RuleID)
	assert.Equal(t, "warning", run.Results[0].Level)
	require.Len(t, run.Results[0].Locations, 1)
	region := run.Results[0].Locations[0].PhysicalLocation.Region
	assert.Equal(t, 2, region.StartLine)
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "macro-redefined", run.Tool.Driver.Rules[0].ID)
}

func TestSARIFReporter_NoteLevel(t *testing.T) {
	t.Parallel()

	file := testFile(`\a.cpp`, "core")
	result := makeResult(runner.EntryOutcome{
		Path: `\a.cpp`,
		Result: &preproc.Result{
			Entry: file,
			Files: []*source.File{file},
			Diagnostics: []*diag.Diagnostic{
				testDiag(diag.CodeBuiltinShadowed, diag.SeverityNote, "builtin shadowed", file, 0),
			},
		},
	})

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf

	rep := reporter.NewSARIFReporter(opts)
	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	var output reporter.SARIFOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Runs[0].Results, 1)
	assert.Equal(t, "note", output.Runs[0].Results[0].Level)
}

func TestSummaryReporter_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"
	opts.Format = reporter.FormatSummary

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	out := buf.String()
	assert.Contains(t, out, "Diagnostics Summary")
	assert.Contains(t, out, "Files Summary")
	assert.Contains(t, out, "macro-redefined")
	assert.Contains(t, out, "Total:")
}

func TestSummaryReporter_NoIssues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	facade, err := reporter.New(reporter.Options{
		Writer: &buf, Color: "never", Format: reporter.FormatSummary,
	})
	require.NoError(t, err)

	count, err := facade.Report(context.Background(), makeResult())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No issues found")
}

func TestTableReporter_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"
	opts.Format = reporter.FormatTable

	rep, err := reporter.New(opts)
	require.NoError(t, err)

	count, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "MESSAGE")
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "macro-redefined")
	assert.Contains(t, out, "2:1")
}

func TestTableReporter_PerEntry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"
	opts.PerEntry = true

	rep := reporter.NewTableReporter(opts)

	_, err := rep.Report(context.Background(), warningResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `\addons\main\config.cpp`)
	assert.Contains(t, out, "LOC")
	assert.Contains(t, out, "Overall Summary")
}

func TestTableReporter_AllPassed(t *testing.T) {
	t.Parallel()

	file := testFile(`\a.cpp`, "core")
	result := makeResult(runner.EntryOutcome{
		Path:   `\a.cpp`,
		Result: &preproc.Result{Entry: file, Files: []*source.File{file}},
	})

	var buf bytes.Buffer
	opts := reporter.DefaultOptions()
	opts.Writer = &buf
	opts.Color = "never"

	rep := reporter.NewTableReporter(opts)
	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "All entries passed!")
}
