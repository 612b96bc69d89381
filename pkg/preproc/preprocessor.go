// Package preproc implements the macro preprocessor for the C-like config
// dialect: object-like and function-like defines with stringize and
// concatenation operators, conditional inclusion, and include splicing
// through the layered workspace. Every run carries its own macro table and
// diagnostic collector, so concurrent runs never share mutable state.
package preproc

import (
	"context"
	"strings"

	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/source"
	"github.com/armakit/armakit/pkg/workspace"
)

// Options configures a preprocessing run.
type Options struct {
	// MaxDepth bounds nested macro expansion. Zero selects
	// DefaultMaxExpansionDepth.
	MaxDepth int

	// Defines seeds the macro table before the entry file is processed,
	// as if each entry were a #define at the top of the run. An empty
	// value defines the name with an empty body.
	Defines map[string]string
}

// Preprocessor expands one entry file at a time against a shared workspace.
// The workspace may be shared across Preprocessors and goroutines; a
// Preprocessor itself is cheap and carries no per-run state.
type Preprocessor struct {
	ws   *workspace.Workspace
	opts Options
}

func New(ws *workspace.Workspace, opts Options) *Preprocessor {
	return &Preprocessor{ws: ws, opts: opts}
}

// Result is the outcome of one run: the expanded token stream, the files
// that participated, and every diagnostic raised along the way. A Result
// with errors still carries the tokens produced before and after each
// error point.
type Result struct {
	// Entry is the resolved entry file.
	Entry *source.File

	// Tokens is the expanded stream, whitespace and comments included.
	Tokens []source.Token

	// Files lists every file spliced into the run, entry first, in first
	// inclusion order.
	Files []*source.File

	// Diagnostics holds errors and warnings in emission order.
	Diagnostics []*diag.Diagnostic

	// Table is the macro table as it stood at the end of the run.
	Table *Table
}

// HasErrors reports whether any diagnostic is error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// Significant returns the expanded stream with spacing and comments
// dropped.
func (r *Result) Significant() []source.Token {
	return significant(r.Tokens)
}

// Render reconstructs output text from the expanded stream. Adjacent
// identifier or number tokens produced by separate expansions are kept
// apart with a single space so the rendering re-tokenizes to the same
// stream.
func (r *Result) Render() string {
	var b strings.Builder
	prevTight := false
	for _, tok := range r.Tokens {
		if tok.Kind == source.TokEOF {
			continue
		}
		text := tok.Text()
		tight := tok.Kind == source.TokIdent || tok.Kind == source.TokNumber
		if tight && prevTight {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prevTight = tight
	}
	return b.String()
}

// Run preprocesses the entry file at the given virtual path. Diagnostics
// describing problems in the input are collected on the Result; the
// returned error covers run-level failures only, such as an unresolved
// entry path or a cancelled context.
func (p *Preprocessor) Run(ctx context.Context, path string) (*Result, error) {
	entry, err := p.ws.Resolve(ctx, workspace.NormalizePath(path))
	if err != nil {
		return nil, err
	}
	return p.RunFile(ctx, entry)
}

// RunFile preprocesses an already resolved entry file.
func (p *Preprocessor) RunFile(ctx context.Context, entry *source.File) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diags := diag.NewCollector()
	table := NewTable(diags)
	seedDefines(table, p.opts.Defines)

	e := newExpander(ctx, p.ws, table, diags, p.opts.MaxDepth)
	e.pushFile(entry)
	e.run()
	e.finish()

	return &Result{
		Entry:       entry,
		Tokens:      e.out,
		Files:       e.files,
		Diagnostics: diags.All(),
		Table:       table,
	}, nil
}

// seedDefines installs configured predefines as object-like macros.
func seedDefines(table *Table, defines map[string]string) {
	for name, body := range defines {
		def := &Definition{Name: name}
		if body != "" {
			def.Body = trimSpacing(significantAndSpacing(lexText(name, body)))
		}
		table.Define(def)
	}
}

// significantAndSpacing drops only the trailing EOF token from a lexed
// stream, keeping interior spacing intact for macro bodies.
func significantAndSpacing(tokens []source.Token) []source.Token {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if tok.Kind != source.TokEOF {
			out = append(out, tok)
		}
	}
	return out
}
