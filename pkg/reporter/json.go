package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string            `json:"version"`
	Entries []JSONEntryResult `json:"entries"`
	Summary JSONSummary       `json:"summary"`
}

// JSONEntryResult represents a single entry file's results.
type JSONEntryResult struct {
	Path        string           `json:"path"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Files       []string         `json:"files,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// JSONDiagnostic represents a single diagnostic.
type JSONDiagnostic struct {
	Code     string        `json:"code"`
	Severity string        `json:"severity"`
	Message  string        `json:"message"`
	File     string        `json:"file,omitempty"`
	Layer    string        `json:"layer,omitempty"`
	Line     int           `json:"line,omitempty"`
	Column   int           `json:"column,omitempty"`
	Chain    []JSONChain   `json:"chain,omitempty"`
	Related  []JSONRelated `json:"related,omitempty"`
}

// JSONChain is one macro expansion frame, outermost first.
type JSONChain struct {
	Macro  string `json:"macro"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// JSONRelated is a secondary location attached to a diagnostic.
type JSONRelated struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	EntriesProcessed  int            `json:"entriesProcessed"`
	EntriesWithIssues int            `json:"entriesWithIssues"`
	EntriesErrored    int            `json:"entriesErrored"`
	FilesRead         int            `json:"filesRead"`
	TotalIssues       int            `json:"totalIssues"`
	BySeverity        map[string]int `json:"bySeverity"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalIssues, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Entries: make([]JSONEntryResult, 0),
		Summary: JSONSummary{
			BySeverity: make(map[string]int),
		},
	}

	if result == nil {
		return output
	}

	output.Summary.FilesRead = result.Stats.FilesRead
	if len(result.Entries) > 0 {
		output.Entries = make([]JSONEntryResult, 0, len(result.Entries))
	}

	for _, entry := range result.Entries {
		entryResult := JSONEntryResult{
			Path:        entry.Path,
			Diagnostics: make([]JSONDiagnostic, 0),
		}

		if entry.Error != nil {
			entryResult.Error = entry.Error.Error()
			output.Summary.EntriesErrored++
		}

		if entry.Result != nil {
			for _, file := range entry.Result.Files {
				entryResult.Files = append(entryResult.Files,
					config.FormatPath(r.opts.PathFormat, file.Layer, file.Path))
			}

			for _, d := range entry.Result.Diagnostics {
				entryResult.Diagnostics = append(entryResult.Diagnostics, r.buildDiagnostic(d))
				output.Summary.TotalIssues++
				output.Summary.BySeverity[string(d.Severity)]++
			}
		}

		if len(entryResult.Diagnostics) > 0 {
			output.Summary.EntriesWithIssues++
		}

		output.Entries = append(output.Entries, entryResult)
		output.Summary.EntriesProcessed++
	}

	return output
}

func (r *JSONReporter) buildDiagnostic(d *diag.Diagnostic) JSONDiagnostic {
	jsonDiag := JSONDiagnostic{
		Code:     string(d.Code),
		Severity: string(d.Severity),
		Message:  d.Message,
	}
	if d.Loc.IsValid() {
		jsonDiag.File = config.FormatPath(r.opts.PathFormat, d.Loc.File.Layer, d.Loc.File.Path)
		jsonDiag.Layer = d.Loc.File.Layer
		jsonDiag.Line, jsonDiag.Column = d.Loc.Position()
	}
	if d.Chain != nil {
		for _, frame := range d.Chain.Frames() {
			chain := JSONChain{Macro: frame.Macro}
			if frame.Site.IsValid() {
				chain.File = config.FormatPath(r.opts.PathFormat, frame.Site.File.Layer, frame.Site.File.Path)
				chain.Line, chain.Column = frame.Site.Position()
			}
			jsonDiag.Chain = append(jsonDiag.Chain, chain)
		}
	}
	for _, rel := range d.Related {
		related := JSONRelated{Message: rel.Message}
		if rel.Loc.IsValid() {
			related.File = config.FormatPath(r.opts.PathFormat, rel.Loc.File.Layer, rel.Loc.File.Path)
			related.Line, related.Column = rel.Loc.Position()
		}
		jsonDiag.Related = append(jsonDiag.Related, related)
	}
	return jsonDiag
}
