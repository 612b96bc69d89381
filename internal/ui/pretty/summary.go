package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/armakit/armakit/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordEntry           = "entry"
	wordEntries         = "entries"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 issues (8 errors, 4 warnings) in 3 entries".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 && stats.EntriesErrored == 0 {
		return s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d entries, %d files read)", stats.EntriesProcessed, stats.FilesRead)) + "\n"
	}

	var parts []string

	// Total issues
	issueWord := "issues"
	if stats.DiagnosticsTotal == 1 {
		issueWord = "issue"
	}

	// Build severity breakdown
	var severityParts []string
	if errors := stats.DiagnosticsBySeverity["error"]; errors > 0 {
		severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d errors", errors)))
	}
	if warnings := stats.DiagnosticsBySeverity["warning"]; warnings > 0 {
		severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d warnings", warnings)))
	}
	if notes := stats.DiagnosticsBySeverity["note"]; notes > 0 {
		severityParts = append(severityParts, s.Note.Render(fmt.Sprintf("%d notes", notes)))
	}

	// Main count with severity breakdown
	if len(severityParts) > 0 {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", stats.DiagnosticsTotal, issueWord, strings.Join(severityParts, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issueWord))
	}

	// Entries with issues
	entryWord := wordEntries
	if stats.EntriesWithIssues == 1 {
		entryWord = wordEntry
	}
	parts = append(parts, fmt.Sprintf("in %d %s", stats.EntriesWithIssues, entryWord))

	if stats.EntriesErrored > 0 {
		erroredWord := wordEntries
		if stats.EntriesErrored == 1 {
			erroredWord = wordEntry
		}
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d %s failed", stats.EntriesErrored, erroredWord)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	// Entries
	builder.WriteString("  Entries processed:   " +
		s.SummaryValue.Render(strconv.Itoa(stats.EntriesProcessed)) + "\n")

	if stats.EntriesWithIssues > 0 {
		builder.WriteString("  Entries with issues: " +
			s.Failure.Render(strconv.Itoa(stats.EntriesWithIssues)) + "\n")
	}

	if stats.EntriesErrored > 0 {
		builder.WriteString("  Entries failed:      " +
			s.Failure.Render(strconv.Itoa(stats.EntriesErrored)) + "\n")
	}

	builder.WriteString("  Files read:          " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesRead)) + "\n")

	builder.WriteString("\n")

	// Diagnostics by severity
	builder.WriteString("  Total issues:        " +
		s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")

	if errors := stats.DiagnosticsBySeverity["error"]; errors > 0 {
		builder.WriteString("    Errors:            " +
			s.Error.Render(strconv.Itoa(errors)) + "\n")
	}
	if warnings := stats.DiagnosticsBySeverity["warning"]; warnings > 0 {
		builder.WriteString("    Warnings:          " +
			s.Warning.Render(strconv.Itoa(warnings)) + "\n")
	}
	if notes := stats.DiagnosticsBySeverity["note"]; notes > 0 {
		builder.WriteString("    Notes:             " +
			s.Note.Render(strconv.Itoa(notes)) + "\n")
	}

	builder.WriteString("\n")

	// Overall status
	switch {
	case stats.EntriesErrored > 0 || stats.DiagnosticsBySeverity["error"] > 0:
		builder.WriteString(s.Failure.Render("Preprocessing failed with errors"))
	case stats.DiagnosticsBySeverity["warning"] > 0:
		builder.WriteString(s.Warning.Render("Preprocessing completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Preprocessing passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
