package preproc

import (
	"context"
	"strconv"
	"strings"

	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/source"
	"github.com/armakit/armakit/pkg/workspace"
)

// DefaultMaxExpansionDepth bounds nested macro expansion frames. Exceeding
// it abandons the offending expansion with a MacroRecursionLimit diagnostic.
const DefaultMaxExpansionDepth = 128

// frame is one entry of the rescanning stack: either a file being spliced
// into the stream or the substituted body of an active macro invocation.
// The algorithm is iterative over this explicit stack, which keeps the
// recursion limit a simple counter.
type frame struct {
	tokens []source.Token
	pos    int

	// chain is non-nil for macro frames; emitted tokens inherit it.
	chain *source.Expansion

	// painted names do not re-expand while this frame is on the stack.
	painted map[string]struct{}

	// filePath is the case-folded virtual path for file frames, used by
	// include cycle detection. Empty for macro frames.
	filePath string

	// lineStart is true when the next token begins a physical line, which
	// is where directives are recognized. Only meaningful in file frames.
	lineStart bool
}

// expander drives one preprocessing run: it owns the conditional stack and
// rescanning state, consults the macro table, and pulls include bytes from
// the workspace.
type expander struct {
	ctx      context.Context
	ws       *workspace.Workspace
	table    *Table
	diags    *diag.Collector
	maxDepth int

	frames      []*frame
	conds       []conditional
	activeFiles map[string]struct{}
	files       []*source.File
	tokenCache  map[*source.File][]source.Token
	out         []source.Token
	macroDepth  int

	// expandOnly marks a sub-expander used for macro-argument
	// pre-expansion: identifiers expand but directives and includes are
	// not interpreted.
	expandOnly bool
}

func newExpander(ctx context.Context, ws *workspace.Workspace, table *Table, diags *diag.Collector, maxDepth int) *expander {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxExpansionDepth
	}
	return &expander{
		ctx:         ctx,
		ws:          ws,
		table:       table,
		diags:       diags,
		maxDepth:    maxDepth,
		activeFiles: make(map[string]struct{}),
		tokenCache:  make(map[*source.File][]source.Token),
	}
}

// pushFile splices a file into the stream, tokenizing it on first use.
func (e *expander) pushFile(file *source.File) {
	tokens, ok := e.tokenCache[file]
	if !ok {
		tokens = Tokenize(file)
		e.tokenCache[file] = tokens
		e.files = append(e.files, file)
	}

	key := workspace.NormalizePath(file.Path).Key()
	e.activeFiles[key] = struct{}{}
	e.push(&frame{tokens: tokens, filePath: key, lineStart: true})
}

func (e *expander) push(f *frame) {
	e.frames = append(e.frames, f)
	if f.chain != nil {
		e.macroDepth++
	}
}

func (e *expander) pop() {
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	if f.filePath != "" {
		delete(e.activeFiles, f.filePath)
	}
	if f.chain != nil {
		e.macroDepth--
	}
}

func (e *expander) top() *frame {
	return e.frames[len(e.frames)-1]
}

// active reports whether tokens are currently forwarded to expansion.
// Entries pushed under an inactive parent are condDone, so inspecting the
// top of the stack is sufficient.
func (e *expander) active() bool {
	return len(e.conds) == 0 || e.conds[len(e.conds)-1].state == condActive
}

// painted reports whether a macro name is excluded from re-expansion by any
// frame currently on the stack. A painted name expands to itself literally.
func (e *expander) painted(name string) bool {
	for _, f := range e.frames {
		if f.painted != nil {
			if _, ok := f.painted[name]; ok {
				return true
			}
		}
	}
	return false
}

// paintedUnion snapshots every painted name on the stack, inherited by
// argument sub-expansions.
func (e *expander) paintedUnion() map[string]struct{} {
	union := make(map[string]struct{})
	for _, f := range e.frames {
		for name := range f.painted {
			union[name] = struct{}{}
		}
	}
	return union
}

// run processes frames until the stack is empty.
func (e *expander) run() {
	for len(e.frames) > 0 {
		f := e.top()
		if f.pos >= len(f.tokens) {
			e.pop()
			continue
		}

		tok := f.tokens[f.pos]

		if tok.Kind == source.TokEOF {
			f.pos++
			continue
		}

		if !e.expandOnly && f.filePath != "" && tok.Kind == source.TokHash && f.lineStart {
			f.pos++
			e.directive(tok, f)
			continue
		}

		if !e.active() {
			f.advance(tok)
			continue
		}

		if tok.Kind == source.TokIdent && e.tryExpand(tok, f) {
			continue
		}

		f.advance(tok)
		e.emit(tok, f)
	}
}

// finish reports conditionals left open at the end of the run.
func (e *expander) finish() {
	for _, c := range e.conds {
		e.diags.Errorf(diag.CodeUnterminatedConditional, c.loc, nil,
			"conditional directive is never closed")
	}
}

// advance consumes the current token and maintains line-start tracking.
func (f *frame) advance(tok source.Token) {
	f.pos++
	switch tok.Kind {
	case source.TokNewline:
		f.lineStart = true
	case source.TokWhitespace, source.TokEscapedNewline, source.TokLineComment, source.TokBlockComment:
	default:
		f.lineStart = false
	}
}

// emit forwards a token to the output stream, attaching the producing
// frame's expansion chain.
func (e *expander) emit(tok source.Token, f *frame) {
	if tok.Chain == nil && f.chain != nil {
		tok.Chain = f.chain
	}
	e.out = append(e.out, tok)
}

// emitRaw forwards a token without chain rewriting, used when replaying
// buffered invocation text verbatim.
func (e *expander) emitRaw(tok source.Token) {
	e.out = append(e.out, tok)
}

// tryExpand attempts macro expansion of an identifier. It returns false
// when the identifier is not an expandable macro, leaving the token to be
// emitted by the caller.
func (e *expander) tryExpand(tok source.Token, f *frame) bool {
	name := tok.Text()
	if e.painted(name) {
		return false
	}
	def, ok := e.table.Lookup(name)
	if !ok {
		return false
	}

	if tok.Chain == nil && f.chain != nil {
		tok.Chain = f.chain
	}
	site := tok.Origin()

	if def.builtin {
		f.advance(tok)
		e.emitBuiltin(def, tok)
		return true
	}

	if !def.Function {
		f.advance(tok)
		if e.macroDepth >= e.maxDepth {
			e.diags.Errorf(diag.CodeMacroRecursionLimit, site, tok.Chain,
				"expansion of %s exceeds the recursion limit (%d)", name, e.maxDepth)
			e.emitRaw(tok)
			return true
		}
		chain := &source.Expansion{Macro: name, Site: site, Parent: tok.Chain}
		body := e.substitute(def, nil, chain)
		e.push(&frame{tokens: body, chain: chain, painted: paint(name)})
		return true
	}

	// Function-like: the invocation requires an open parenthesis as the
	// next significant token; otherwise the name is ordinary text.
	f.advance(tok)
	buffered := []source.Token{tok}
	next, ok := e.peekSignificant(&buffered)
	if !ok || !next.Is("(") {
		for _, b := range buffered {
			e.emitRaw(b)
		}
		return true
	}

	args, closed := e.collectArguments(&buffered)
	if !closed {
		e.diags.Errorf(diag.CodeMalformedDirective, site, tok.Chain,
			"unterminated invocation of macro %s", name)
		e.replay(buffered)
		return true
	}

	if !arityMatches(def, args) {
		e.diags.Errorf(diag.CodeArgumentCountMismatch, site, tok.Chain,
			"macro %s expects %d argument(s), got %d", name, len(def.Params), len(args))
		e.replay(buffered)
		return true
	}
	if len(def.Params) == 0 {
		args = nil
	}

	if e.macroDepth >= e.maxDepth {
		e.diags.Errorf(diag.CodeMacroRecursionLimit, site, tok.Chain,
			"expansion of %s exceeds the recursion limit (%d)", name, e.maxDepth)
		e.replay(buffered)
		return true
	}

	chain := &source.Expansion{Macro: name, Site: site, Parent: tok.Chain}
	body := e.substitute(def, args, chain)
	e.push(&frame{tokens: body, chain: chain, painted: paint(name)})
	return true
}

// replay emits buffered invocation tokens verbatim, preserving the literal
// text so the author can see what failed to expand.
func (e *expander) replay(buffered []source.Token) {
	for _, b := range buffered {
		e.emitRaw(b)
	}
}

// emitBuiltin expands a built-in pseudo-macro at its invocation site.
func (e *expander) emitBuiltin(def *Definition, tok source.Token) {
	site := tok.Origin()
	switch def.Name {
	case builtinFile:
		path := "<unknown>"
		if site.File != nil {
			path = site.File.Path
		}
		e.emitRaw(source.Synthesize(source.TokString, quoteString(path), site, tok.Chain))
	case builtinLine:
		line, _ := site.Position()
		e.emitRaw(source.Synthesize(source.TokNumber, strconv.Itoa(line), site, tok.Chain))
	}
}

// peekSignificant reads ahead across frames to the next significant token
// without consuming it, buffering any spacing it skips.
func (e *expander) peekSignificant(buffered *[]source.Token) (source.Token, bool) {
	for {
		tok, ok := e.peekToken()
		if !ok {
			return source.Token{}, false
		}
		if !tok.IsSpacing() {
			return tok, true
		}
		e.consumeToken()
		*buffered = append(*buffered, tok)
	}
}

// peekToken returns the next raw token across frame boundaries.
func (e *expander) peekToken() (source.Token, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		f := e.frames[i]
		for p := f.pos; p < len(f.tokens); p++ {
			if f.tokens[p].Kind == source.TokEOF {
				continue
			}
			return f.tokens[p], true
		}
	}
	return source.Token{}, false
}

// consumeToken consumes the next raw token across frame boundaries.
func (e *expander) consumeToken() (source.Token, bool) {
	for len(e.frames) > 0 {
		f := e.top()
		if f.pos >= len(f.tokens) {
			e.pop()
			continue
		}
		tok := f.tokens[f.pos]
		f.advance(tok)
		if tok.Kind == source.TokEOF {
			continue
		}
		if tok.Chain == nil && f.chain != nil {
			tok.Chain = f.chain
		}
		return tok, true
	}
	return source.Token{}, false
}

// collectArguments consumes a parenthesized argument list, splitting on
// top-level commas. Nested parentheses inside an argument do not split it.
// Every consumed token is appended to buffered so a failed invocation can
// be replayed verbatim.
func (e *expander) collectArguments(buffered *[]source.Token) ([][]source.Token, bool) {
	open, _ := e.consumeToken() // the '(' peeked by the caller
	*buffered = append(*buffered, open)

	var args [][]source.Token
	var current []source.Token
	depth := 1

	for {
		tok, ok := e.consumeToken()
		if !ok {
			return nil, false
		}
		*buffered = append(*buffered, tok)

		switch {
		case tok.Is("("):
			depth++
			current = append(current, tok)
		case tok.Is(")"):
			depth--
			if depth == 0 {
				args = append(args, trimSpacing(current))
				return args, true
			}
			current = append(current, tok)
		case tok.Is(",") && depth == 1:
			args = append(args, trimSpacing(current))
			current = nil
		default:
			current = append(current, tok)
		}
	}
}

// arityMatches checks the argument count against the parameter list.
// A parameterless function-like macro invoked as NAME() arrives as one
// empty argument.
func arityMatches(def *Definition, args [][]source.Token) bool {
	if len(def.Params) == 0 {
		return len(args) == 1 && len(args[0]) == 0
	}
	return len(args) == len(def.Params)
}

// substitute builds the replacement token list for one invocation:
// parameters are replaced by their fully expanded arguments except adjacent
// to the stringize or concatenation operators, then concatenations are
// applied.
func (e *expander) substitute(def *Definition, args [][]source.Token, chain *source.Expansion) []source.Token {
	paramIdx := make(map[string]int, len(def.Params))
	for i, p := range def.Params {
		paramIdx[p] = i
	}

	body := def.Body
	out := make([]source.Token, 0, len(body))

	for i := 0; i < len(body); {
		tok := body[i]

		// Stringize: '#' followed by a parameter name.
		if tok.Kind == source.TokHash && def.Function {
			if j := nextSignificantIdx(body, i+1); j >= 0 && body[j].Kind == source.TokIdent {
				if pi, ok := paramIdx[body[j].Text()]; ok {
					out = append(out, source.Synthesize(
						source.TokString, stringizeArg(args[pi]), tok.Origin(), chain))
					i = j + 1
					continue
				}
			}
		}

		if tok.Kind == source.TokIdent {
			if pi, ok := paramIdx[tok.Text()]; ok {
				if adjacentToConcat(body, i) {
					out = append(out, withChain(args[pi], chain)...)
				} else {
					out = append(out, e.expandFully(args[pi], chain)...)
				}
				i++
				continue
			}
		}

		t := tok
		if t.Chain == nil {
			t.Chain = chain
		}
		out = append(out, t)
		i++
	}

	return e.applyConcat(out, chain)
}

// applyConcat merges token pairs joined by the concatenation operator.
// The merged text is re-lexed; when it does not form a single token an
// InvalidConcatenation diagnostic is emitted and the merged text is kept
// as-is.
func (e *expander) applyConcat(tokens []source.Token, chain *source.Expansion) []source.Token {
	hasConcat := false
	for _, tok := range tokens {
		if tok.Kind == source.TokConcat {
			hasConcat = true
			break
		}
	}
	if !hasConcat {
		return tokens
	}

	out := make([]source.Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != source.TokConcat {
			out = append(out, tok)
			continue
		}

		// Pop the left operand, dropping spacing around the operator.
		for len(out) > 0 && out[len(out)-1].IsSpacing() {
			out = out[:len(out)-1]
		}
		j := nextSignificantIdx(tokens, i+1)
		if len(out) == 0 || j < 0 {
			e.diags.Errorf(diag.CodeMalformedDirective, tok.Origin(), chain,
				"concatenation operator is missing an operand")
			continue
		}

		left := out[len(out)-1]
		right := tokens[j]
		out = out[:len(out)-1]
		i = j

		merged := left.Text() + right.Text()
		lexed := significant(lexText("<concat>", merged))
		if len(lexed) == 1 {
			out = append(out, source.Synthesize(lexed[0].Kind, merged, tok.Origin(), chain))
		} else {
			e.diags.Errorf(diag.CodeInvalidConcatenation, tok.Origin(), chain,
				"concatenation of %q and %q does not form a valid token", left.Text(), right.Text())
			out = append(out, source.Synthesize(source.TokIdent, merged, tok.Origin(), chain))
		}
	}
	return out
}

// expandFully pre-expands argument tokens in the current painting context.
// Directives and includes are not interpreted inside arguments.
func (e *expander) expandFully(tokens []source.Token, chain *source.Expansion) []source.Token {
	if len(significant(tokens)) == 0 {
		return withChain(tokens, chain)
	}

	sub := &expander{
		ctx:         e.ctx,
		ws:          e.ws,
		table:       e.table,
		diags:       e.diags,
		maxDepth:    e.maxDepth,
		macroDepth:  e.macroDepth,
		activeFiles: e.activeFiles,
		tokenCache:  e.tokenCache,
		expandOnly:  true,
	}
	sub.push(&frame{tokens: tokens, chain: chain, painted: e.paintedUnion()})
	sub.run()
	return sub.out
}

// withChain copies tokens, attaching the expansion chain where absent.
func withChain(tokens []source.Token, chain *source.Expansion) []source.Token {
	out := make([]source.Token, len(tokens))
	for i, tok := range tokens {
		if tok.Chain == nil {
			tok.Chain = chain
		}
		out[i] = tok
	}
	return out
}

// stringizeArg renders argument tokens as a string literal with runs of
// spacing collapsed to single spaces. The argument is not macro-expanded.
func stringizeArg(arg []source.Token) string {
	var b strings.Builder
	pendingSpace := false
	for _, tok := range arg {
		if tok.IsSpacing() {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteString(tok.Text())
	}
	return quoteString(b.String())
}

// quoteString wraps text in double quotes using the dialect's doubled-quote
// escape.
func quoteString(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

// adjacentToConcat reports whether the body token at idx neighbors a
// concatenation operator, in which case the parameter substitutes
// unexpanded.
func adjacentToConcat(body []source.Token, idx int) bool {
	if j := nextSignificantIdx(body, idx+1); j >= 0 && body[j].Kind == source.TokConcat {
		return true
	}
	if j := prevSignificantIdx(body, idx-1); j >= 0 && body[j].Kind == source.TokConcat {
		return true
	}
	return false
}

// nextSignificantIdx returns the index of the next non-spacing token at or
// after start, or -1.
func nextSignificantIdx(tokens []source.Token, start int) int {
	for i := start; i < len(tokens); i++ {
		if !tokens[i].IsSpacing() && tokens[i].Kind != source.TokEOF {
			return i
		}
	}
	return -1
}

// prevSignificantIdx returns the index of the previous non-spacing token at
// or before start, or -1.
func prevSignificantIdx(tokens []source.Token, start int) int {
	for i := start; i >= 0; i-- {
		if !tokens[i].IsSpacing() && tokens[i].Kind != source.TokEOF {
			return i
		}
	}
	return -1
}

// paint creates a painted-name set containing one macro name.
func paint(name string) map[string]struct{} {
	return map[string]struct{}{name: {}}
}
