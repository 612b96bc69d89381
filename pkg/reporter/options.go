package reporter

import (
	"io"
	"os"

	"github.com/armakit/armakit/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes source line context in diagnostics.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// GroupByEntry groups diagnostics by entry file (default: true for text format).
	GroupByEntry bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// PerEntry outputs a separate report for each entry (table format only).
	PerEntry bool

	// PathFormat controls whether file paths carry their layer prefix.
	PathFormat config.PathFormat
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatText,
		Color:        "auto",
		ShowContext:  true,
		ShowSummary:  true,
		GroupByEntry: true,
		Compact:      false,
		PathFormat:   config.PathFormatVirtual,
	}
}
