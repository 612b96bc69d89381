package pretty

import (
	"fmt"
	"strings"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/source"
)

// FormatDiagnostic formats a single diagnostic for terminal output using
// virtual path display.
func (s *Styles) FormatDiagnostic(d *diag.Diagnostic, showContext bool) string {
	return s.FormatDiagnosticWithFormat(d, showContext, config.PathFormatVirtual)
}

// FormatDiagnosticWithFormat formats a diagnostic with configurable path format.
func (s *Styles) FormatDiagnosticWithFormat(d *diag.Diagnostic, showContext bool, pathFormat config.PathFormat) string {
	var builder strings.Builder

	// Severity with prefix
	severity := s.FormatSeverity(d.Severity)

	codeDisplay := s.Code.Render("(" + string(d.Code) + ")")

	// Main line: location  severity  message  (code)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		s.FormatLocation(d.Loc, pathFormat),
		severity,
		s.Message.Render(d.Message),
		codeDisplay,
	))

	// Source context
	if showContext && d.Loc.IsValid() {
		line, col := d.Loc.Position()
		if content := d.Loc.File.LineContent(line); content != nil {
			builder.WriteString(s.FormatSourceContext(string(content), col))
		}
	}

	// Expansion chain, outermost first
	if d.Chain != nil {
		for _, frame := range d.Chain.Frames() {
			builder.WriteString("    " + s.Chain.Render(fmt.Sprintf(
				"expanded from macro %s at %s",
				frame.Macro,
				s.plainLocation(frame.Site, pathFormat),
			)) + "\n")
		}
	}

	// Related locations
	for _, rel := range d.Related {
		builder.WriteString("    " + s.Dim.Render("note:") + " " +
			s.Message.Render(rel.Message) + " " +
			s.Location.Render(s.plainLocation(rel.Loc, pathFormat)) + "\n")
	}

	return builder.String()
}

// FormatLocation renders a path:line:col location with the configured path
// format. An invalid location renders as <unknown>.
func (s *Styles) FormatLocation(loc source.Location, pathFormat config.PathFormat) string {
	if !loc.IsValid() {
		return s.Location.Render("<unknown>")
	}
	line, col := loc.Position()
	return fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(config.FormatPath(pathFormat, loc.File.Layer, loc.File.Path)),
		line,
		col,
	)
}

// plainLocation renders a location without per-component styling, for use
// inside already styled lines.
func (s *Styles) plainLocation(loc source.Location, pathFormat config.PathFormat) string {
	if !loc.IsValid() {
		return "<unknown>"
	}
	line, col := loc.Position()
	return fmt.Sprintf("%s:%d:%d",
		config.FormatPath(pathFormat, loc.File.Layer, loc.File.Path), line, col)
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return s.Error.Render("error")
	case diag.SeverityWarning:
		return s.Warning.Render("warning")
	case diag.SeverityNote:
		return s.Note.Render("note")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	// Source line
	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	// Caret marker
	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
