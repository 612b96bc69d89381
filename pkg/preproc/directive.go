package preproc

import (
	"errors"
	"strings"

	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/source"
	"github.com/armakit/armakit/pkg/workspace"
)

// condState tracks one entry of the conditional inclusion stack.
type condState uint8

const (
	// condActive forwards tokens in the current branch.
	condActive condState = iota
	// condSkipping drops tokens but may flip active at #else.
	condSkipping
	// condDone drops tokens permanently: either a true branch already ran
	// or the enclosing conditional is itself inactive.
	condDone
)

type conditional struct {
	state    condState
	elseSeen bool
	loc      source.Location
}

// directive interprets one directive line. The leading hash has already
// been consumed from f. Inside skipped regions only the conditional
// directives are interpreted, everything else is discarded.
func (e *expander) directive(hashTok source.Token, f *frame) {
	line := e.readDirectiveLine(f)
	sig := significant(line)

	if len(sig) == 0 {
		return // null directive
	}
	head := sig[0]
	if head.Kind != source.TokIdent {
		if e.active() {
			e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
				"expected a directive name after '#'")
		}
		return
	}

	switch head.Text() {
	case "define":
		if e.active() {
			e.handleDefine(line, sig)
		}
	case "undef":
		if e.active() {
			e.handleUndef(sig, head)
		}
	case "include":
		if e.active() {
			e.handleInclude(line, sig, head)
		}
	case "ifdef":
		e.handleIfdef(sig, head, false)
	case "ifndef":
		e.handleIfdef(sig, head, true)
	case "if":
		e.handleIf(sig, head)
	case "else":
		e.handleElse(head)
	case "endif":
		e.handleEndif(head)
	default:
		if e.active() {
			e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
				"unknown directive #%s", head.Text())
		}
	}
}

// readDirectiveLine consumes tokens up to and including the terminating
// newline of the current physical line. Escaped newlines continue the
// directive onto the next physical line and are dropped. Directives never
// span frame boundaries.
func (e *expander) readDirectiveLine(f *frame) []source.Token {
	var line []source.Token
	for f.pos < len(f.tokens) {
		tok := f.tokens[f.pos]
		f.pos++
		switch tok.Kind {
		case source.TokNewline:
			f.lineStart = true
			return line
		case source.TokEscapedNewline, source.TokEOF:
		default:
			line = append(line, tok)
		}
	}
	f.lineStart = true
	return line
}

// handleDefine parses `#define NAME body` and `#define NAME(a,b) body`.
// The macro is function-like only when the open parenthesis immediately
// follows the name with no intervening spacing.
func (e *expander) handleDefine(line, sig []source.Token) {
	if len(sig) < 2 || sig[1].Kind != source.TokIdent {
		e.diags.Errorf(diag.CodeMalformedDirective, sig[0].Origin(), nil,
			"#define requires a macro name")
		return
	}
	name := sig[1]

	// Find the name in the raw line to check operator adjacency.
	nameIdx := rawIndexOf(line, name)
	function := nameIdx+1 < len(line) && line[nameIdx+1].Is("(")

	def := &Definition{
		Name: name.Text(),
		Loc:  name.Origin(),
	}

	bodyStart := nameIdx + 1
	if function {
		def.Function = true
		params, after, ok := parseParams(line, nameIdx+2)
		if !ok {
			e.diags.Errorf(diag.CodeMalformedDirective, name.Origin(), nil,
				"malformed parameter list for macro %s", def.Name)
			return
		}
		def.Params = params
		bodyStart = after
	}

	def.Body = trimSpacing(line[min(bodyStart, len(line)):])
	e.table.Define(def)
}

// parseParams reads a parameter list starting just after the open
// parenthesis at line[start-1]. It returns the parameter names and the
// index following the closing parenthesis.
func parseParams(line []source.Token, start int) (params []string, after int, ok bool) {
	wantIdent := true
	for i := start; i < len(line); i++ {
		tok := line[i]
		switch {
		case tok.IsSpacing():
		case tok.Is(")"):
			if wantIdent && len(params) > 0 {
				return nil, 0, false
			}
			return params, i + 1, true
		case tok.Is(","):
			if wantIdent {
				return nil, 0, false
			}
			wantIdent = true
		case tok.Kind == source.TokIdent:
			if !wantIdent {
				return nil, 0, false
			}
			params = append(params, tok.Text())
			wantIdent = false
		default:
			return nil, 0, false
		}
	}
	return nil, 0, false
}

// handleUndef removes a macro. Undefining an unknown name is silently
// accepted.
func (e *expander) handleUndef(sig []source.Token, head source.Token) {
	if len(sig) < 2 || sig[1].Kind != source.TokIdent {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"#undef requires a macro name")
		return
	}
	e.table.Undefine(sig[1].Text())
}

// handleInclude resolves the requested path through the workspace and
// splices the file into the stream. A missing file or an include cycle is
// reported and the directive contributes nothing.
func (e *expander) handleInclude(line, sig []source.Token, head source.Token) {
	path, loc, ok := includePath(line, sig)
	if !ok {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			`#include requires a "path" or <path> argument`)
		return
	}

	var from *source.File
	if f := head.Origin().File; f != nil {
		from = f
	}

	file, err := e.ws.IncludeSearch(e.ctx, path, from)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			e.diags.Errorf(diag.CodeFileNotFound, loc, nil,
				"include file not found: %s", path)
		} else {
			e.diags.Errorf(diag.CodeFileNotFound, loc, nil,
				"cannot read include %s: %v", path, err)
		}
		return
	}

	key := workspace.NormalizePath(file.Path).Key()
	if _, cycling := e.activeFiles[key]; cycling {
		d := e.diags.Errorf(diag.CodeCircularInclude, loc, nil,
			"circular include of %s", file.Path)
		for i := len(e.frames) - 1; i >= 0; i-- {
			if fr := e.frames[i]; fr.filePath != "" && len(fr.tokens) > 0 {
				d.Relate("included from here", fr.tokens[0].Origin())
			}
		}
		return
	}

	e.pushFile(file)
}

// includePath extracts the include argument: either a string literal or an
// angle-bracketed path whose raw text between < and > is taken verbatim.
func includePath(line, sig []source.Token) (string, source.Location, bool) {
	if len(sig) >= 2 && sig[1].Kind == source.TokString {
		text := sig[1].Text()
		if len(text) >= 2 {
			return text[1 : len(text)-1], sig[1].Origin(), true
		}
		return "", sig[1].Origin(), false
	}
	if len(sig) >= 2 && sig[1].Is("<") {
		start := rawIndexOf(line, sig[1])
		var b strings.Builder
		for i := start + 1; i < len(line); i++ {
			if line[i].Is(">") {
				return b.String(), sig[1].Origin(), true
			}
			b.WriteString(line[i].Text())
		}
	}
	return "", source.Location{}, false
}

func (e *expander) handleIfdef(sig []source.Token, head source.Token, negate bool) {
	if !e.active() {
		e.conds = append(e.conds, conditional{state: condDone, loc: head.Origin()})
		return
	}
	if len(sig) < 2 || sig[1].Kind != source.TokIdent {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"#%s requires a macro name", head.Text())
		e.conds = append(e.conds, conditional{state: condSkipping, loc: head.Origin()})
		return
	}
	defined := e.table.IsDefined(sig[1].Text())
	state := condSkipping
	if defined != negate {
		state = condActive
	}
	e.conds = append(e.conds, conditional{state: state, loc: head.Origin()})
}

func (e *expander) handleIf(sig []source.Token, head source.Token) {
	if !e.active() {
		e.conds = append(e.conds, conditional{state: condDone, loc: head.Origin()})
		return
	}
	value, err := evalCondition(sig[1:], e.table)
	if err != nil {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"cannot evaluate #if condition: %v", err)
		value = false
	}
	state := condSkipping
	if value {
		state = condActive
	}
	e.conds = append(e.conds, conditional{state: state, loc: head.Origin()})
}

func (e *expander) handleElse(head source.Token) {
	if len(e.conds) == 0 {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"#else without a matching conditional")
		return
	}
	top := &e.conds[len(e.conds)-1]
	if top.elseSeen {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"duplicate #else in conditional")
		return
	}
	top.elseSeen = true
	switch top.state {
	case condActive:
		top.state = condDone
	case condSkipping:
		top.state = condActive
	}
}

func (e *expander) handleEndif(head source.Token) {
	if len(e.conds) == 0 {
		e.diags.Errorf(diag.CodeMalformedDirective, head.Origin(), nil,
			"#endif without a matching conditional")
		return
	}
	e.conds = e.conds[:len(e.conds)-1]
}

// rawIndexOf locates a token inside the raw line by identity of file and
// span.
func rawIndexOf(line []source.Token, want source.Token) int {
	for i, tok := range line {
		if tok.File == want.File && tok.StartOffset == want.StartOffset && tok.EndOffset == want.EndOffset {
			return i
		}
	}
	return -1
}

// trimSpacing drops leading and trailing spacing tokens.
func trimSpacing(tokens []source.Token) []source.Token {
	start := 0
	for start < len(tokens) && tokens[start].IsSpacing() {
		start++
	}
	end := len(tokens)
	for end > start && tokens[end-1].IsSpacing() {
		end--
	}
	return tokens[start:end]
}
