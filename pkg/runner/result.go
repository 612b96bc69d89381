package runner

import (
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/preproc"
)

// EntryOutcome wraps a preprocessing result with its entry path.
type EntryOutcome struct {
	// Path is the virtual path of the entry file.
	Path string

	// Result contains the preprocessing result for this entry.
	// May be nil if the entry could not be processed at all.
	Result *preproc.Result

	// Error is set if the entry could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// EntriesDiscovered is the total number of entry files found.
	EntriesDiscovered int

	// EntriesProcessed is the number of entries successfully processed.
	EntriesProcessed int

	// EntriesErrored is the number of entries that could not be read.
	EntriesErrored int

	// EntriesWithIssues is the number of entries with at least one
	// diagnostic.
	EntriesWithIssues int

	// DiagnosticsTotal is the total number of diagnostics across entries.
	DiagnosticsTotal int

	// DiagnosticsBySeverity maps severity levels to counts.
	DiagnosticsBySeverity map[string]int

	// FilesRead is the total number of files spliced across all runs,
	// counting each entry's include closure.
	FilesRead int
}

// Result is the overall runner result.
type Result struct {
	// Entries contains the outcome for each processed entry.
	// Entries are ordered deterministically (by path).
	Entries []EntryOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any error-severity diagnostics occurred or
// any entry failed outright.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.EntriesErrored > 0 || r.Stats.DiagnosticsBySeverity[string(diag.SeverityError)] > 0
}

// HasIssues reports whether any diagnostics were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// newStats creates a new Stats with initialized maps.
func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[string]int),
	}
}

// accumulate updates the result with an entry outcome.
func (r *Result) accumulate(outcome EntryOutcome) {
	r.Entries = append(r.Entries, outcome)

	if outcome.Error != nil {
		r.Stats.EntriesErrored++
		return
	}

	if outcome.Result == nil {
		return
	}

	r.Stats.EntriesProcessed++
	r.Stats.FilesRead += len(outcome.Result.Files)

	diagCount := len(outcome.Result.Diagnostics)
	r.Stats.DiagnosticsTotal += diagCount
	if diagCount > 0 {
		r.Stats.EntriesWithIssues++
	}

	for _, d := range outcome.Result.Diagnostics {
		severity := string(d.Severity)
		if severity == "" {
			severity = string(diag.SeverityWarning)
		}
		r.Stats.DiagnosticsBySeverity[severity]++
	}
}
