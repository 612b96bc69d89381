package analysis

import "github.com/armakit/armakit/pkg/config"

// SortField specifies how to sort analysis results.
type SortField string

const (
	// SortByCount sorts by issue count (descending by default).
	SortByCount SortField = "count"
	// SortByAlpha sorts alphabetically.
	SortByAlpha SortField = "alpha"
	// SortBySeverity sorts by severity (errors first).
	SortBySeverity SortField = "severity"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortBySeverity:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeDiagnostics includes the flat diagnostics list.
	IncludeDiagnostics bool

	// IncludeByFile includes the per-file analysis.
	IncludeByFile bool

	// IncludeByCode includes the per-code analysis.
	IncludeByCode bool

	// SortBy specifies how to sort ByFile and ByCode.
	SortBy SortField

	// SortDesc sorts in descending order (highest first).
	SortDesc bool

	// PathFormat controls whether file paths carry their layer prefix.
	PathFormat config.PathFormat
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeDiagnostics: true,
		IncludeByFile:      true,
		IncludeByCode:      true,
		SortBy:             SortByCount,
		SortDesc:           true,
		PathFormat:         config.PathFormatVirtual,
	}
}
