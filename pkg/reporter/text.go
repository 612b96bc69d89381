package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/armakit/armakit/internal/ui/pretty"
	"github.com/armakit/armakit/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
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

	var totalIssues int

	if r.opts.GroupByEntry {
		totalIssues = r.reportGrouped(ctx, result)
	} else {
		totalIssues = r.reportFlat(ctx, result)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return totalIssues, nil
}

// reportGrouped writes diagnostics grouped by entry file.
func (r *TextReporter) reportGrouped(_ context.Context, result *runner.Result) int {
	var total int

	for _, entry := range result.Entries {
		// Handle entry errors
		if entry.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(entry.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", entry.Error)),
			)
			continue
		}

		if entry.Result == nil || len(entry.Result.Diagnostics) == 0 {
			continue
		}

		// Entry header
		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(entry.Path, len(entry.Result.Diagnostics)))

		for _, d := range entry.Result.Diagnostics {
			fmt.Fprint(r.bw, r.styles.FormatDiagnosticWithFormat(d, r.opts.ShowContext, r.opts.PathFormat))
			total++
		}

		// Blank line between entries
		fmt.Fprintln(r.bw)
	}

	return total
}

// reportFlat writes diagnostics without grouping.
func (r *TextReporter) reportFlat(_ context.Context, result *runner.Result) int {
	var total int

	for _, entry := range result.Entries {
		// Handle entry errors
		if entry.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(entry.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", entry.Error)),
			)
			continue
		}

		if entry.Result == nil {
			continue
		}

		for _, d := range entry.Result.Diagnostics {
			fmt.Fprint(r.bw, r.styles.FormatDiagnosticWithFormat(d, r.opts.ShowContext, r.opts.PathFormat))
			total++
		}
	}

	return total
}
