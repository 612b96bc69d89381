// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldEntries    = "entries"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldLayer   = "layer"
	FieldLayers  = "layers"
	FieldRank    = "rank"
	FieldFormat  = "format"
	FieldJobs    = "jobs"
	FieldDefines = "defines"

	// Statistics fields.
	FieldEntriesDiscovered = "entries_discovered"
	FieldEntriesProcessed  = "entries_processed"
	FieldEntriesWithIssues = "entries_with_issues"
	FieldDiagnosticsTotal  = "diagnostics_total"
	FieldFilesRead         = "files_read"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Diagnostic fields.
	FieldName     = "name"
	FieldSeverity = "severity"
	FieldCode     = "code"
)
