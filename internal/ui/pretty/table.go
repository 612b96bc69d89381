package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, LOC, MESSAGE, CODE
	perEntryColCount = 3 // LOC, MESSAGE, CODE (no FILE column)
	minFileWidth     = 20
	minLocWidth      = 10
	minMessageWidth  = 35
	minCodeWidth     = 12
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow represents a single row in the diagnostic table.
type TableRow struct {
	File     string
	Location string
	Message  string
	Code     string
	Severity diag.Severity
}

// TableFormatter formats diagnostics as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
	pathFormat   config.PathFormat
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int, pathFormat config.PathFormat) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
		pathFormat:   pathFormat,
	}
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Entries) == 0 {
		return ""
	}

	// Collect all rows grouped by entry
	groups := t.collectRows(result)
	if len(groups) == 0 {
		return ""
	}

	// Calculate column widths
	colWidths := t.calculateColumnWidths(groups)

	var builder strings.Builder

	// Write header
	builder.WriteString(t.formatHeader(colWidths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	// Write rows grouped by entry
	isFirstGroup := true
	for _, group := range groups {
		if !isFirstGroup {
			builder.WriteString(t.formatSeparator(colWidths, lightSeparator))
			builder.WriteString("\n")
		}
		isFirstGroup = false

		for _, row := range group {
			builder.WriteString(t.formatRow(row, colWidths))
			builder.WriteString("\n")
		}
	}

	// Write footer separator
	builder.WriteString(t.formatSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	// Write legend
	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

// FormatEntryTable formats a single entry's diagnostics as a standalone table.
func (t *TableFormatter) FormatEntryTable(entry runner.EntryOutcome) string {
	if entry.Result == nil || len(entry.Result.Diagnostics) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(entry.Result.Diagnostics))
	for _, d := range entry.Result.Diagnostics {
		rows = append(rows, DiagnosticToTableRow(d, t.pathFormat))
	}

	// Per-entry tables omit the FILE column since the entry is shown in
	// the preceding header.
	colWidths := t.calculateColumnWidthsForRows(rows)

	var builder strings.Builder

	builder.WriteString(t.formatPerEntryHeader(colWidths))
	builder.WriteString("\n")
	builder.WriteString(t.formatPerEntrySeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatPerEntryRow(row, colWidths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatPerEntrySeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatEntrySummary(rows))
	builder.WriteString("\n")

	return builder.String()
}

// calculateColumnWidthsForRows calculates widths for per-entry tables.
func (t *TableFormatter) calculateColumnWidthsForRows(rows []TableRow) perEntryColumnWidths {
	widths := perEntryColumnWidths{
		loc:     minLocWidth,
		message: minMessageWidth,
		code:    minCodeWidth,
	}

	for _, row := range rows {
		if len(row.Location) > widths.loc {
			widths.loc = len(row.Location)
		}
		if len(row.Message) > widths.message {
			widths.message = len(row.Message)
		}
		if len(row.Code) > widths.code {
			widths.code = len(row.Code)
		}
	}

	// Constrain to terminal width
	totalWidth := widths.loc + widths.message + widths.code + (tablePadding * perEntryColCount)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.message = max(minMessageWidth, widths.message-excess)
	}

	return widths
}

type perEntryColumnWidths struct {
	loc     int
	message int
	code    int
}

// formatPerEntryHeader formats the header for per-entry tables.
func (t *TableFormatter) formatPerEntryHeader(widths perEntryColumnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s",
		widths.loc, "LOC",
		widths.message, "MESSAGE",
		widths.code, "CODE",
	)
	return t.styles.TableHeader.Render(header)
}

// formatPerEntrySeparator formats a separator line for per-entry tables.
func (t *TableFormatter) formatPerEntrySeparator(widths perEntryColumnWidths, char string) string {
	totalWidth := widths.loc + widths.message + widths.code + (tablePadding * perEntryColCount)
	sep := strings.Repeat(char, totalWidth)
	return t.styles.TableSeparator.Render(sep)
}

// formatPerEntryRow formats a single row in the per-entry table.
func (t *TableFormatter) formatPerEntryRow(row TableRow, widths perEntryColumnWidths) string {
	loc := truncateString(row.Location, widths.loc)
	message := truncateString(row.Message, widths.message)
	code := truncateString(row.Code, widths.code)

	content := fmt.Sprintf(" %-*s  %-*s  %-*s",
		widths.loc, loc,
		widths.message, message,
		widths.code, code,
	)

	rowStyle := t.getRowStyle(row.Severity)
	return rowStyle.Render(content)
}

// formatEntrySummary formats a summary line for a single entry.
func (t *TableFormatter) formatEntrySummary(rows []TableRow) string {
	var errors, warnings, notes int

	for _, row := range rows {
		switch row.Severity {
		case diag.SeverityError:
			errors++
		case diag.SeverityWarning:
			warnings++
		case diag.SeverityNote:
			notes++
		}
	}

	var parts []string
	if errors > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d errors", errors)))
	}
	if warnings > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d warnings", warnings)))
	}
	if notes > 0 {
		parts = append(parts, t.styles.Note.Render(fmt.Sprintf("%d notes", notes)))
	}

	return " " + strings.Join(parts, " | ")
}

// collectRows collects diagnostic rows grouped by entry.
func (t *TableFormatter) collectRows(result *runner.Result) [][]TableRow {
	var groups [][]TableRow

	for _, entry := range result.Entries {
		if entry.Result == nil || len(entry.Result.Diagnostics) == 0 {
			continue
		}

		rows := make([]TableRow, 0, len(entry.Result.Diagnostics))
		for _, d := range entry.Result.Diagnostics {
			rows = append(rows, DiagnosticToTableRow(d, t.pathFormat))
		}

		groups = append(groups, rows)
	}

	return groups
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		file:    minFileWidth,
		loc:     minLocWidth,
		message: minMessageWidth,
		code:    minCodeWidth,
	}

	// Scan all rows to find max widths
	for _, group := range groups {
		for _, row := range group {
			if len(row.File) > widths.file {
				widths.file = len(row.File)
			}
			if len(row.Location) > widths.loc {
				widths.loc = len(row.Location)
			}
			if len(row.Message) > widths.message {
				widths.message = len(row.Message)
			}
			if len(row.Code) > widths.code {
				widths.code = len(row.Code)
			}
		}
	}

	// Constrain to terminal width
	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		// Reduce message width first
		excess := totalWidth - t.termWidth
		widths.message = max(minMessageWidth, widths.message-excess)

		// If still too wide, reduce file width
		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.file = max(minFileWidth, widths.file-excess)
		}
	}

	return widths
}

type columnWidths struct {
	file    int
	loc     int
	message int
	code    int
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.file, "FILE",
		widths.loc, "LOC",
		widths.message, "MESSAGE",
		widths.code, "CODE",
	)
	return t.styles.TableHeader.Render(header)
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.file + widths.loc + widths.message + widths.code +
		(tablePadding * tableColumnCount)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	totalWidth := t.calculateTotalWidth(widths)
	sep := strings.Repeat(char, totalWidth)
	return t.styles.TableSeparator.Render(sep)
}

// formatRow formats a single table row with severity-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	// Truncate fields if necessary - use special truncation for file paths
	file := truncateFilePath(row.File, widths.file)
	loc := truncateString(row.Location, widths.loc)
	message := truncateString(row.Message, widths.message)
	code := truncateString(row.Code, widths.code)

	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.file, file,
		widths.loc, loc,
		widths.message, message,
		widths.code, code,
	)

	rowStyle := t.getRowStyle(row.Severity)
	return rowStyle.Render(content)
}

// getRowStyle returns the appropriate style for a severity level.
func (t *TableFormatter) getRowStyle(severity diag.Severity) lipgloss.Style {
	switch severity {
	case diag.SeverityError:
		return t.styles.TableErrorRow
	case diag.SeverityWarning:
		return t.styles.TableWarnRow
	case diag.SeverityNote:
		return t.styles.TableNoteRow
	default:
		return lipgloss.NewStyle()
	}
}

// formatLegend formats the legend explaining the table colors.
func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: E = error | W = warning | N = note")
	}

	errorSample := t.styles.TableErrorRow.Render(" error ")
	warnSample := t.styles.TableWarnRow.Render(" warning ")
	noteSample := t.styles.TableNoteRow.Render(" note ")

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s %s %s", errorSample, warnSample, noteSample),
	)
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d entries processed", stats.EntriesProcessed))

	if stats.DiagnosticsBySeverity["error"] > 0 {
		errCount := t.styles.Error.Render(fmt.Sprintf("%d errors", stats.DiagnosticsBySeverity["error"]))
		parts = append(parts, errCount)
	}

	if stats.DiagnosticsBySeverity["warning"] > 0 {
		warnCount := t.styles.Warning.Render(fmt.Sprintf("%d warnings", stats.DiagnosticsBySeverity["warning"]))
		parts = append(parts, warnCount)
	}

	if stats.DiagnosticsBySeverity["note"] > 0 {
		noteCount := t.styles.Note.Render(fmt.Sprintf("%d notes", stats.DiagnosticsBySeverity["note"]))
		parts = append(parts, noteCount)
	}

	if stats.EntriesErrored > 0 {
		failed := t.styles.Failure.Render(fmt.Sprintf("%d failed", stats.EntriesErrored))
		parts = append(parts, failed)
	}

	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// DiagnosticToTableRow converts a preprocessing diagnostic to a table row.
func DiagnosticToTableRow(d *diag.Diagnostic, pathFormat config.PathFormat) TableRow {
	row := TableRow{
		File:     "<unknown>",
		Message:  d.Message,
		Code:     string(d.Code),
		Severity: d.Severity,
	}
	if d.Loc.IsValid() {
		line, col := d.Loc.Position()
		row.File = config.FormatPath(pathFormat, d.Loc.File.Layer, d.Loc.File.Path)
		row.Location = fmt.Sprintf("%d:%d", line, col)
	}
	return row
}
