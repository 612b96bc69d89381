package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/armakit/armakit/internal/ui/pretty"
	"github.com/armakit/armakit/pkg/runner"
)

// defaultTermWidth is used when terminal width cannot be determined.
const defaultTermWidth = 100

// TableReporter formats results as a styled table with color-coded rows.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	// Try to get terminal width
	termWidth := getTerminalWidth(opts.Writer)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled, termWidth, opts.PathFormat),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Entries) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No entries to preprocess."))
		}
		return 0, nil
	}

	// Count total issues
	totalIssues := countTotalIssues(result)

	if totalIssues == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw)
			fmt.Fprintln(r.bw, r.styles.Success.Render("All entries passed!"))
			fmt.Fprintln(r.bw, r.styles.Dim.Render(
				fmt.Sprintf("%d entries processed, %d files read",
					result.Stats.EntriesProcessed, result.Stats.FilesRead),
			))
		}
		return 0, nil
	}

	// Use per-entry or combined output based on option
	if r.opts.PerEntry {
		r.reportPerEntry(result)
	} else {
		r.reportCombined(result)
	}

	return totalIssues, nil
}

// reportCombined outputs all entries in a single table.
func (r *TableReporter) reportCombined(result *runner.Result) {
	// Format and print the table
	table := r.formatter.FormatTable(result)
	fmt.Fprint(r.bw, table)

	// Print summary
	if r.opts.ShowSummary {
		summary := r.formatter.FormatTableSummary(result.Stats, "")
		fmt.Fprintln(r.bw, summary)
	}
}

// reportPerEntry outputs a separate table for each entry with issues.
func (r *TableReporter) reportPerEntry(result *runner.Result) {
	entriesWithIssues := 0

	for _, entry := range result.Entries {
		if entry.Result == nil || len(entry.Result.Diagnostics) == 0 {
			continue
		}

		entriesWithIssues++

		// Print entry header
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.styles.Bold.Render(entry.Path))

		// Format and print this entry's table
		table := r.formatter.FormatEntryTable(entry)
		fmt.Fprint(r.bw, table)
	}

	// Print overall summary
	if r.opts.ShowSummary && entriesWithIssues > 0 {
		fmt.Fprintln(r.bw)
		fmt.Fprintln(r.bw, r.styles.TableSeparator.Render("════════════════════════════════════════════════════════════════════════════════"))
		fmt.Fprintln(r.bw, r.styles.Bold.Render("Overall Summary"))
		summary := r.formatter.FormatTableSummary(result.Stats, "")
		fmt.Fprintln(r.bw, summary)
	}
}

// countTotalIssues counts all diagnostics in the result.
func countTotalIssues(result *runner.Result) int {
	var total int
	for _, entry := range result.Entries {
		if entry.Result != nil {
			total += len(entry.Result.Diagnostics)
		}
	}
	return total
}

// getTerminalWidth attempts to get the terminal width from the writer.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
