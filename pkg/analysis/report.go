package analysis

import "time"

// Report contains pre-computed views of preprocessing results.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Diagnostics is the flat list for detailed output.
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`

	// ByFile groups diagnostics by the file they occurred in.
	ByFile []FileAnalysis `json:"byFile,omitempty"`

	// ByCode groups diagnostics by diagnostic code.
	ByCode []CodeAnalysis `json:"byCode,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticEntry represents a single diagnostic in the report.
type DiagnosticEntry struct {
	// FilePath is the virtual path of the file the diagnostic points at,
	// which for included files differs from the entry path.
	FilePath string `json:"filePath"`

	// Layer names the workspace layer the file was resolved from.
	Layer string `json:"layer,omitempty"`

	// Entry is the virtual path of the entry file whose run raised the
	// diagnostic.
	Entry string `json:"entry"`

	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`

	// Chain lists the macro expansion frames active at the location,
	// outermost first.
	Chain []ChainEntry `json:"chain,omitempty"`

	// Related holds secondary locations, e.g. a previous definition site.
	Related []RelatedEntry `json:"related,omitempty"`
}

// ChainEntry is one macro expansion frame of a diagnostic's location chain.
type ChainEntry struct {
	Macro    string `json:"macro"`
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// RelatedEntry is a secondary location attached to a diagnostic.
type RelatedEntry struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Entries           int `json:"entriesProcessed"`
	EntriesWithIssues int `json:"entriesWithIssues"`
	EntriesErrored    int `json:"entriesErrored"`
	FilesRead         int `json:"filesRead"`
	Issues            int `json:"totalIssues"`
	Errors            int `json:"errors"`
	Warnings          int `json:"warnings"`
	Notes             int `json:"notes"`
}

// HasIssues returns true if there are any issues.
func (t Totals) HasIssues() bool {
	return t.Issues > 0
}

// HasErrors returns true if any diagnostic is error severity or any entry
// failed outright.
func (t Totals) HasErrors() bool {
	return t.Errors > 0 || t.EntriesErrored > 0
}

// FileAnalysis contains aggregated data for a single file.
type FileAnalysis struct {
	Path     string   `json:"path"`
	Layer    string   `json:"layer,omitempty"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Notes    int      `json:"notes"`
	Codes    []string `json:"codes,omitempty"`
}

// CodeAnalysis contains aggregated data for a single diagnostic code.
type CodeAnalysis struct {
	Code     string   `json:"code"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Notes    int      `json:"notes"`
	Files    []string `json:"files,omitempty"`
}
