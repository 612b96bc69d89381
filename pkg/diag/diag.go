// Package diag provides the diagnostic model for preprocessing runs:
// severities, the structured problem taxonomy, and an append-only collector.
// Diagnostics never abort a run; callers inspect the collected list after
// the run completes and decide whether error-severity findings should block
// a build step.
package diag

import "github.com/armakit/armakit/pkg/source"

// Severity represents the severity level of a diagnostic.
type Severity string

const (
	// SeverityError marks output-affecting problems; the token stream is
	// still produced but is suspect.
	SeverityError Severity = "error"

	// SeverityWarning marks problems that do not invalidate the output.
	SeverityWarning Severity = "warning"

	// SeverityNote marks pure context attached to another diagnostic,
	// e.g. "previous definition here".
	SeverityNote Severity = "note"
)

// Code identifies one kind of preprocessing problem.
type Code string

const (
	CodeFileNotFound          Code = "file-not-found"
	CodeCircularInclude       Code = "circular-include"
	CodeMacroRedefined        Code = "macro-redefined"
	CodeBuiltinShadowed       Code = "builtin-shadowed"
	CodeArgumentCountMismatch Code = "argument-count-mismatch"
	CodeInvalidConcatenation  Code = "invalid-concatenation"
	CodeMacroRecursionLimit   Code = "macro-recursion-limit"
	CodeUnterminatedConditional Code = "unterminated-conditional"
	CodeMalformedDirective    Code = "malformed-directive"
)

// Related is a secondary location attached to a diagnostic, rendered as a
// note (e.g. pointing at a previous macro definition).
type Related struct {
	// Message describes the relation.
	Message string

	// Loc is the secondary source location.
	Loc source.Location
}

// Diagnostic represents a single problem found during preprocessing.
type Diagnostic struct {
	// Code is the taxonomy identifier for this problem.
	Code Code

	// Severity indicates the importance of the diagnostic.
	Severity Severity

	// Message is the human-readable description of the problem.
	Message string

	// Loc is the primary source location.
	Loc source.Location

	// Chain is the macro expansion chain active at the primary location,
	// nil outside any expansion.
	Chain *source.Expansion

	// Related holds optional secondary locations.
	Related []Related
}
